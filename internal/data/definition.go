package data

// Stat names a combatant attribute that potency and modifiers refer to.
type Stat int8

const (
	StatATK   Stat = iota // Attack
	StatDEF               // Defense
	StatAGI               // Agility (turn order)
	StatMaxHP             // Maximum health
	StatMaxSP             // Maximum skill points
)

var statNames = map[Stat]string{
	StatATK:   "atk",
	StatDEF:   "def",
	StatAGI:   "agi",
	StatMaxHP: "maxhp",
	StatMaxSP: "maxsp",
}

func (s Stat) String() string {
	if n, ok := statNames[s]; ok {
		return n
	}
	return "unknown"
}

// Modifiable reports whether status modifiers may target the stat.
// AGI is read from base stats only.
func (s Stat) Modifiable() bool {
	switch s {
	case StatATK, StatDEF, StatMaxHP, StatMaxSP:
		return true
	}
	return false
}

// PotencyMode selects how a power value is interpreted.
type PotencyMode int8

const (
	PotencyFlat    PotencyMode = iota // power is an absolute amount
	PotencyPercent                    // power is a percentage of a base stat
)

func (m PotencyMode) String() string {
	if m == PotencyPercent {
		return "percent"
	}
	return "flat"
}

// EffectType is the direct HP effect of a skill or item.
type EffectType int8

const (
	EffectNone   EffectType = iota // status-only actions
	EffectDamage                   // subtract from target HP
	EffectHeal                     // add to target HP
)

func (e EffectType) String() string {
	switch e {
	case EffectDamage:
		return "damage"
	case EffectHeal:
		return "heal"
	default:
		return "none"
	}
}

// Selection is the shape of a target set.
type Selection int8

const (
	SelectSelf   Selection = iota // the acting combatant only
	SelectSingle                  // one chosen combatant
	SelectMulti                   // every eligible combatant in the pool
)

func (s Selection) String() string {
	switch s {
	case SelectSelf:
		return "self"
	case SelectSingle:
		return "single"
	default:
		return "multi"
	}
}

// FactionMask picks the pool relative to the caster, never the absolute side.
type FactionMask int8

const (
	TargetEnemies FactionMask = iota
	TargetAllies
)

func (f FactionMask) String() string {
	if f == TargetAllies {
		return "allies"
	}
	return "enemies"
}

// StatusOp is what a skill or item does with a status definition.
type StatusOp int8

const (
	OpInflict StatusOp = iota
	OpRemove
)

func (o StatusOp) String() string {
	if o == OpRemove {
		return "remove"
	}
	return "inflict"
}

// StatusCategory is cosmetic; no calculation reads it.
type StatusCategory int8

const (
	CategoryAilment StatusCategory = iota
	CategoryBuff
	CategoryDebuff
)

func (c StatusCategory) String() string {
	switch c {
	case CategoryBuff:
		return "buff"
	case CategoryDebuff:
		return "debuff"
	default:
		return "ailment"
	}
}

// DotSource decides whose stats drive a damage-over-time tick.
type DotSource int8

const (
	DotFromTarget    DotSource = iota // the combatant carrying the status
	DotFromInflictor                  // the combatant that applied it
)

func (d DotSource) String() string {
	if d == DotFromInflictor {
		return "inflictor"
	}
	return "target"
}

// Stats is a block of base attributes.
type Stats struct {
	ATK   int32
	DEF   int32
	AGI   int32
	MaxHP int32
	MaxSP int32
}

// Get returns the value of a single stat.
func (s Stats) Get(stat Stat) int32 {
	switch stat {
	case StatATK:
		return s.ATK
	case StatDEF:
		return s.DEF
	case StatAGI:
		return s.AGI
	case StatMaxHP:
		return s.MaxHP
	case StatMaxSP:
		return s.MaxSP
	}
	return 0
}

// Plus returns the component-wise sum.
func (s Stats) Plus(o Stats) Stats {
	return Stats{
		ATK:   s.ATK + o.ATK,
		DEF:   s.DEF + o.DEF,
		AGI:   s.AGI + o.AGI,
		MaxHP: s.MaxHP + o.MaxHP,
		MaxSP: s.MaxSP + o.MaxSP,
	}
}

// StatModifier changes one stat while a status is active.
// Flat modifiers are summed before percent modifiers are applied.
type StatModifier struct {
	Stat  Stat
	Mode  PotencyMode
	Power int32
}

// DamageOverTime describes a turn-end HP loss.
type DamageOverTime struct {
	Active bool
	Source DotSource
	Basis  Stat
	Mode   PotencyMode
	Power  int32
}

// StatusTriggers are presentation cue names passed through effect events.
type StatusTriggers struct {
	OnApply  string
	OnExpire string
	OnTick   string
}

// StatusEffectDefinition is an immutable status template.
type StatusEffectDefinition struct {
	ID            string
	Name          string
	Description   string
	Category      StatusCategory
	DurationTurns int32
	Modifiers     []StatModifier
	DOT           DamageOverTime

	// Outgoing and incoming damage multipliers in percent.
	DamageDealtPercent int32
	DamageTakenPercent int32

	Triggers StatusTriggers
}

// TargetSpec is the targeting rule of an action.
type TargetSpec struct {
	Selection Selection
	Faction   FactionMask
}

// EffectSpec is the HP effect of an action.
type EffectSpec struct {
	Type  EffectType
	Basis Stat
	Mode  PotencyMode
	Power int32
}

// StatusOperation pairs a status definition with what to do with it.
type StatusOperation struct {
	Status *StatusEffectDefinition
	Op     StatusOp
}

// SkillDefinition is an immutable skill template.
type SkillDefinition struct {
	ID          string
	Name        string
	Description string
	Cost        int32
	Target      TargetSpec
	Effect      EffectSpec
	Statuses    []StatusOperation
}

// ItemDefinition is an immutable consumable template.
type ItemDefinition struct {
	ID          string
	Name        string
	Description string
	Quantity    int32 // consumed per use, at least 1
	Target      TargetSpec
	Effect      EffectSpec
	Statuses    []StatusOperation
}

// EquipmentDefinition adds flat bonuses to a unit's base stats.
type EquipmentDefinition struct {
	ID    string
	Name  string
	Bonus Stats
}

// UnitTemplate describes a combatant before the battle starts.
type UnitTemplate struct {
	ID         string
	Name       string
	Stats      Stats
	StartingSP int32
	Skills     []*SkillDefinition
	Equipment  []*EquipmentDefinition
}

// TotalStats returns base stats with equipment bonuses folded in.
func (u *UnitTemplate) TotalStats() Stats {
	total := u.Stats
	for _, eq := range u.Equipment {
		total = total.Plus(eq.Bonus)
	}
	return total
}

// ItemStack is a starting inventory entry.
type ItemStack struct {
	Item  *ItemDefinition
	Count int32
}

// Encounter is a party-vs-party battle setup.
type Encounter struct {
	ID         string
	Name       string
	Party      []*UnitTemplate
	Enemies    []*UnitTemplate
	PartyItems []ItemStack
	EnemyItems []ItemStack
}
