package profile

type PurchaserView struct {
	ID      int64  `json:"id"`
	User    int64  `json:"user"`
	Name    string `json:"name"`
	Address string `json:"address"`
}

type SupplierView struct {
	ID          int64  `json:"id"`
	User        int64  `json:"user"`
	Name        string `json:"name"`
	Address     string `json:"address"`
	OrderStatus bool   `json:"order_status"`
}

type ChainStoreView struct {
	ID        int64  `json:"id"`
	Purchaser int64  `json:"purchaser"`
	Name      string `json:"name"`
	Address   string `json:"address"`
	Phone     string `json:"phone"`
}

func MapPurchaser(p *Purchaser) PurchaserView {
	return PurchaserView{ID: p.ID, User: p.UserID, Name: p.Name, Address: p.Address}
}

func MapSupplier(s *Supplier) SupplierView {
	return SupplierView{ID: s.ID, User: s.UserID, Name: s.Name, Address: s.Address, OrderStatus: s.AcceptsOrders}
}

func MapChainStore(cs *ChainStore) ChainStoreView {
	return ChainStoreView{ID: cs.ID, Purchaser: cs.PurchaserID, Name: cs.Name, Address: cs.Address, Phone: cs.Phone}
}

func MapChainStores(list []*ChainStore) []ChainStoreView {
	out := make([]ChainStoreView, 0, len(list))
	for _, cs := range list {
		out = append(out, MapChainStore(cs))
	}
	return out
}
