package glove

// Source is anything that can provide glove samples over time.
type Source interface {
	Next() (Sample, error)
}
