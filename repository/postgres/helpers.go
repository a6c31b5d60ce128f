package postgres

const maxPageSize = 100

// limitArg is the LIMIT parameter for a listing. Zero or less binds NULL,
// which Postgres reads as no limit. Explicit limits are capped at maxPageSize.
func limitArg(limit int) interface{} {
	if limit <= 0 {
		return nil
	}
	if limit > maxPageSize {
		return maxPageSize
	}
	return limit
}

// nullable turns an optional enum or string field into a query argument,
// where nil becomes SQL NULL so COALESCE keeps the stored value.
func nullable[T ~string](v *T) interface{} {
	if v == nil {
		return nil
	}
	return string(*v)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}
