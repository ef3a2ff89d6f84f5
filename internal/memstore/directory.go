package memstore

import (
	"context"

	"procurement-be/internal/profile"
)

type directory struct{ s *Store }

func (d *directory) ChainStoreOwner(ctx context.Context, chainStoreID int64) (int64, error) {
	defer d.s.lock(ctx)()
	owner, ok := d.s.t.chainStores[chainStoreID]
	if !ok {
		return 0, profile.ErrChainStoreNotFound
	}
	return owner, nil
}

func (d *directory) PurchaserEmail(ctx context.Context, purchaserID int64) (string, error) {
	defer d.s.lock(ctx)()
	p, ok := d.s.t.purchasers[purchaserID]
	if !ok {
		return "", profile.ErrPurchaserNotFound
	}
	return p.email, nil
}

func (d *directory) SupplierEmail(ctx context.Context, supplierID int64) (string, error) {
	defer d.s.lock(ctx)()
	sp, ok := d.s.t.suppliers[supplierID]
	if !ok {
		return "", profile.ErrSupplierNotFound
	}
	return sp.email, nil
}
