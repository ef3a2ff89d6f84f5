package category

type Category struct {
	ID   int64
	Name string
}

type Filter struct {
	Search string
	Limit  int
	Offset int
}
