package models

// Counter is a named, atomically incremented sequence used to mint
// human-facing order numbers. Gaps can appear if a checkout fails after
// the increment but before the order insert; numbers never repeat.
type Counter struct {
	Name string `bson:"name" json:"name"`
	Seq  int64  `bson:"seq" json:"seq"`
}
