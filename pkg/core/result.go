package core

// QueryResult is the uniform tabular shape every SELECT normalizes into.
// Column order matches the engine's result-set order, which is not
// necessarily the order columns were declared in.
type QueryResult struct {
	Columns []string `json:"columns"`
	Rows    []Row    `json:"rows"`
}

// MutationOutcome reports an UPDATE or DELETE: the number of rows the
// statement's predicate matched against the pre-mutation state, plus the full
// post-mutation contents of the target table. The count is computed
// out-of-band because the engine's raw execution path does not supply it.
type MutationOutcome struct {
	AffectedRowCount int64       `json:"affectedRowCount"`
	ResultingRows    QueryResult `json:"resultingRows"`
}
