package models

// The result shapes below follow what the web client already consumes.

type InsertResult struct {
	Acknowledged bool   `json:"acknowledged"`
	InsertedID   string `json:"insertedId"`
}

type UpdateResult struct {
	Acknowledged  bool   `json:"acknowledged"`
	MatchedCount  int64  `json:"matchedCount"`
	ModifiedCount int64  `json:"modifiedCount"`
	UpsertedCount int64  `json:"upsertedCount"`
	UpsertedID    string `json:"upsertedId,omitempty"`
}

type DeleteResult struct {
	Acknowledged bool  `json:"acknowledged"`
	DeletedCount int64 `json:"deletedCount"`
}

type BorrowResult struct {
	InsertResult InsertResult `json:"insertResult"`
	UpdateResult UpdateResult `json:"updateResult"`
}

type ReturnResult struct {
	DeleteResult DeleteResult `json:"deleteResult"`
	UpdateResult UpdateResult `json:"updateResult"`
}

// StockUpdate builds the result of a single-document quantity change.
func StockUpdate(n int64) UpdateResult {
	return UpdateResult{Acknowledged: true, MatchedCount: n, ModifiedCount: n}
}
