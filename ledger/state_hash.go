package ledger

import (
	"crypto/sha256"
	"encoding/binary"
	"sort"

	"github.com/web4asset/w4t/types"
)

// ComputeStateHash computes a deterministic hash over the ledger state so
// replicas that replayed the same calls can compare results.
// Each record is encoded as: len(address)|address|balance(8B BE), accounts
// sorted by address, followed by the total supply (8B BE).
func ComputeStateHash(accounts []types.Account, supply uint64) [32]byte {
	sorted := make([]types.Account, len(accounts))
	copy(sorted, accounts)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Address < sorted[j].Address
	})

	h := sha256.New()
	buf := make([]byte, 8)
	for _, acc := range sorted {
		binary.BigEndian.PutUint64(buf, uint64(len(acc.Address)))
		h.Write(buf)
		h.Write([]byte(acc.Address))
		binary.BigEndian.PutUint64(buf, acc.Balance)
		h.Write(buf)
	}
	binary.BigEndian.PutUint64(buf, supply)
	h.Write(buf)

	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}
