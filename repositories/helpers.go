package repositories

import (
	"github.com/luminospark/asambal-system/docstore"
)

// resolve picks the transaction handle when one is supplied, otherwise the
// store itself. Every repository method accepts an optional Operator so the
// same accessor works inside and outside RunTransaction.
func resolve(store docstore.Store, op docstore.Operator) docstore.Operator {
	if op != nil {
		return op
	}
	return store
}
