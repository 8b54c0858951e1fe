// Package leveling defines the pure value types for the leveling subsystem
// (C13-C16): professions, XP, abilities, timed/permanent buff sets, and the
// versioned-operation counter. This package is PURE and must NOT import any
// infrastructure packages (hostport, persistence, engine).
package leveling

// Profession identifies one of the five XP-earning disciplines (§3
// PlayerLeveling).
type Profession int

const (
	ProfessionCombat Profession = iota
	ProfessionMining
	ProfessionLogging
	ProfessionBuilding
	ProfessionGathering
)

func (p Profession) String() string {
	switch p {
	case ProfessionCombat:
		return "COMBAT"
	case ProfessionMining:
		return "MINING"
	case ProfessionLogging:
		return "LOGGING"
	case ProfessionBuilding:
		return "BUILDING"
	case ProfessionGathering:
		return "GATHERING"
	default:
		return "UNKNOWN"
	}
}

// AllProfessions lists every Profession in a stable, deterministic order.
var AllProfessions = []Profession{
	ProfessionCombat, ProfessionMining, ProfessionLogging, ProfessionBuilding, ProfessionGathering,
}

// ProgressRecord holds one profession's level/xp bookkeeping.
type ProgressRecord struct {
	Level        int
	XP           float64 // xp accumulated within the current level
	CumulativeXP float64 // total xp ever earned, including consumed-by-levelups
	SkillPoints  int
}

// Progress is the immutable value type (§3: "Immutable value type;
// mutations return new instances and atomically replace") mapping every
// Profession to its ProgressRecord.
type Progress struct {
	records map[Profession]ProgressRecord
}

// NewProgress returns a fresh Progress with every profession at level 1.
func NewProgress() Progress {
	records := make(map[Profession]ProgressRecord, len(AllProfessions))
	for _, p := range AllProfessions {
		records[p] = ProgressRecord{Level: 1}
	}
	return Progress{records: records}
}

// Get returns the record for a profession (zero value if absent).
func (p Progress) Get(profession Profession) ProgressRecord {
	return p.records[profession]
}

// With returns a new Progress with the given profession's record replaced,
// preserving immutability: callers swap the whole value atomically.
func (p Progress) With(profession Profession, record ProgressRecord) Progress {
	next := make(map[Profession]ProgressRecord, len(p.records))
	for k, v := range p.records {
		next[k] = v
	}
	next[profession] = record
	return Progress{records: next}
}

// Clone returns a deep, independent copy.
func (p Progress) Clone() Progress {
	next := make(map[Profession]ProgressRecord, len(p.records))
	for k, v := range p.records {
		next[k] = v
	}
	return Progress{records: next}
}
