package domain

// PageRequest is an offset-based page window: From is the zero-based offset of the
// first element, Size the maximum number of elements.
type PageRequest struct {
	From int
	Size int
}

// Validate reports an invalid input error unless From >= 0 and Size > 0.
func (p PageRequest) Validate() error {
	if p.From < 0 {
		return InvalidInputf("from must be zero or positive, got %d", p.From)
	}
	if p.Size <= 0 {
		return InvalidInputf("size must be positive, got %d", p.Size)
	}
	return nil
}
