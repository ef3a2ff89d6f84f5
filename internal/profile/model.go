package profile

type Purchaser struct {
	ID      int64
	UserID  int64
	Name    string
	Address string
}

// Supplier is a shop publishing stock. AcceptsOrders gates new cart
// additions and cart increases against its stock.
type Supplier struct {
	ID            int64
	UserID        int64
	Name          string
	Address       string
	AcceptsOrders bool
}

// ChainStore is a delivery destination owned by one purchaser.
type ChainStore struct {
	ID          int64
	PurchaserID int64
	Name        string
	Address     string
	Phone       string
}

type PurchaserParams struct {
	Name    string
	Address string
}

type SupplierParams struct {
	Name          string
	Address       string
	AcceptsOrders *bool
}

type ChainStoreParams struct {
	Name    string
	Address string
	Phone   string
}

// IDs are the profile rows a user owns; at most one of each.
type IDs struct {
	PurchaserID *int64
	SupplierID  *int64
}
