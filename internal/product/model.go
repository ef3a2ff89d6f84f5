package product

type Product struct {
	ID         int64
	CategoryID int64
	Name       string
	Model      string
}

type Filter struct {
	ID         *int64
	CategoryID *int64
	Name       string
	Limit      int
	Offset     int
}

type CreateParams struct {
	CategoryID *int64
	Name       string
	Model      string
}

// UpdateParams carries the fields the caller sent; nil means unchanged.
type UpdateParams struct {
	CategoryID *int64
	Name       *string
	Model      *string
}
