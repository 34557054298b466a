package tick

import "time"

// Event is something noteworthy that happened during an Update. It is one of
// TierChanged, BudgetExceeded, StalePurged or TickPanicked.
type Event interface {
	isEvent()
}

// TierChanged is emitted when the classifier moves an entity between tiers.
type TierChanged struct {
	ID   EntryID
	From Tier
	To   Tier
}

// BudgetExceeded is emitted when a dispatch pass stops early on its time budget.
type BudgetExceeded struct {
	Tier      Tier
	Elapsed   time.Duration
	Processed int
	Total     int
}

// StalePurged is emitted when the classifier drops an entity that was collected
// without being unregistered.
type StalePurged struct {
	ID   EntryID
	Tier Tier
}

// TickPanicked is emitted when an entity's Tick panicked. The pass carries on.
type TickPanicked struct {
	ID    EntryID
	Tier  Tier
	Value any
}

func (TierChanged) isEvent()    {}
func (BudgetExceeded) isEvent() {}
func (StalePurged) isEvent()    {}
func (TickPanicked) isEvent()   {}
