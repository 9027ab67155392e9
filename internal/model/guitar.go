// Package model holds the record types persisted in the key-value table.
package model

// Guitar is the single record type. ID is the table key; every other
// attribute is opaque payload and may be left empty.
type Guitar struct {
	ID      int    `json:"id" dynamodbav:"id"`
	Brand   string `json:"brand,omitempty" dynamodbav:"brand,omitempty"`
	Model   string `json:"model,omitempty" dynamodbav:"model,omitempty"`
	Strings int    `json:"strings,omitempty" dynamodbav:"strings,omitempty"`
	Colour  string `json:"colour,omitempty" dynamodbav:"colour,omitempty"`
}

// Key returns the table key.
func (g Guitar) Key() int {
	return g.ID
}
