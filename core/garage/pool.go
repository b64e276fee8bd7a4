// Package garage implements the per-garage vehicle pool.
//
// A Pool is a LIFO stack of vehicle ids: the vehicle parked last is the
// first one to leave, as in a single-lane garage where only the front
// vehicle can exit.
package garage

// Pool is a LIFO stack of vehicle ids. The zero value is an empty pool.
type Pool struct {
	ids []int // bottom at index 0
}

// Park pushes the vehicle on top of the pool.
func (p *Pool) Park(vehicleID int) {
	p.ids = append(p.ids, vehicleID)
}

// Depart pops the top vehicle. ok is false when the pool is empty.
func (p *Pool) Depart() (vehicleID int, ok bool) {
	n := len(p.ids)
	if n == 0 {
		return 0, false
	}
	vehicleID = p.ids[n-1]
	p.ids = p.ids[:n-1]
	return vehicleID, true
}

// Snapshot returns the parked ids top-first without modifying the pool.
func (p *Pool) Snapshot() []int {
	out := make([]int, len(p.ids))
	for i, id := range p.ids {
		out[len(p.ids)-1-i] = id
	}
	return out
}

// Count returns the number of parked vehicles.
func (p *Pool) Count() int { return len(p.ids) }

// Clear empties the pool.
func (p *Pool) Clear() { p.ids = p.ids[:0] }
