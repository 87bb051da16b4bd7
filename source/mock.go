package source

import "context"

// MockDirectory is a test double for Directory.
// All function fields must be set before the corresponding method is called.
type MockDirectory struct {
	AccountsFn    func(ctx context.Context, wallet WalletID) ([]AccountID, error)
	AddressesFn   func(ctx context.Context, account AccountID) ([]AddressMeta, error)
	OwnsAddressFn func(ctx context.Context, wallet WalletID, address string) (bool, error)
}

func (m *MockDirectory) Accounts(ctx context.Context, wallet WalletID) ([]AccountID, error) {
	return m.AccountsFn(ctx, wallet)
}
func (m *MockDirectory) Addresses(ctx context.Context, account AccountID) ([]AddressMeta, error) {
	return m.AddressesFn(ctx, account)
}
func (m *MockDirectory) OwnsAddress(ctx context.Context, wallet WalletID, address string) (bool, error) {
	return m.OwnsAddressFn(ctx, wallet, address)
}
