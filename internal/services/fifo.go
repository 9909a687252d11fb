package services

import (
	"fmt"

	"stockfolio/internal/ledger"
	"stockfolio/internal/models"
)

// planReduction computes the lot mutations needed to remove sharesToRemove
// shares from the given lots, consuming oldest lots first. Lots must already
// be ordered by purchase date ascending, which is what the ledger store
// guarantees. A lot fully consumed is planned for deletion; at most the last
// touched lot is planned for an in-place share reduction.
//
// It is a pure function: it never touches storage, so FIFO consumption can be
// tested without a live store and applied atomically afterwards.
func planReduction(lots []models.Lot, sharesToRemove int64) ([]ledger.LotMutation, error) {
	remaining := sharesToRemove
	mutations := make([]ledger.LotMutation, 0, len(lots))

	for _, lot := range lots {
		if remaining <= 0 {
			break
		}
		if lot.Shares <= remaining {
			mutations = append(mutations, ledger.LotMutation{LotID: lot.ID, Delete: true})
			remaining -= lot.Shares
			continue
		}
		mutations = append(mutations, ledger.LotMutation{LotID: lot.ID, NewShares: lot.Shares - remaining})
		remaining = 0
	}

	if remaining > 0 {
		// The caller checks total shares before planning, so running out of
		// lots here means the read raced a concurrent mutation.
		return nil, fmt.Errorf("lots exhausted with %d shares left to remove", remaining)
	}
	return mutations, nil
}
