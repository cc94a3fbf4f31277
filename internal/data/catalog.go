package data

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Catalog holds every authored template of a game, keyed by ID.
// Read-only once built.
type Catalog struct {
	Statuses   map[string]*StatusEffectDefinition
	Skills     map[string]*SkillDefinition
	Items      map[string]*ItemDefinition
	Equipment  map[string]*EquipmentDefinition
	Units      map[string]*UnitTemplate
	Encounters map[string]*Encounter
}

// Encounter returns an encounter by ID, or nil if not found.
func (c *Catalog) Encounter(id string) *Encounter {
	return c.Encounters[id]
}

// Skill returns a skill by ID, or nil if not found.
func (c *Catalog) Skill(id string) *SkillDefinition {
	return c.Skills[id]
}

// Item returns an item by ID, or nil if not found.
func (c *Catalog) Item(id string) *ItemDefinition {
	return c.Items[id]
}

// Status returns a status definition by ID, or nil if not found.
func (c *Catalog) Status(id string) *StatusEffectDefinition {
	return c.Statuses[id]
}

// CatalogDocument is the serialized catalog form. References between
// templates are by ID and resolved by Build.
type CatalogDocument struct {
	Statuses   []StatusDoc    `yaml:"statuses"`
	Skills     []SkillDoc     `yaml:"skills"`
	Items      []ItemDoc      `yaml:"items"`
	Equipment  []EquipmentDoc `yaml:"equipment"`
	Units      []UnitDoc      `yaml:"units"`
	Encounters []EncounterDoc `yaml:"encounters"`
}

type ModifierDoc struct {
	Stat  string `yaml:"stat"`
	Mode  string `yaml:"mode"`
	Power int32  `yaml:"power"`
}

type DotDoc struct {
	Active bool   `yaml:"active"`
	Source string `yaml:"source"`
	Basis  string `yaml:"basis"`
	Mode   string `yaml:"mode"`
	Power  int32  `yaml:"power"`
}

type TriggersDoc struct {
	OnApply  string `yaml:"on_apply"`
	OnExpire string `yaml:"on_expire"`
	OnTick   string `yaml:"on_tick"`
}

type StatusDoc struct {
	ID                 string        `yaml:"id"`
	Name               string        `yaml:"name"`
	Description        string        `yaml:"description"`
	Category           string        `yaml:"category"`
	Duration           int32         `yaml:"duration"`
	Modifiers          []ModifierDoc `yaml:"modifiers"`
	DOT                *DotDoc       `yaml:"dot"`
	DamageDealtPercent int32         `yaml:"damage_dealt_percent"`
	DamageTakenPercent int32         `yaml:"damage_taken_percent"`
	Triggers           TriggersDoc   `yaml:"triggers"`
}

type TargetDoc struct {
	Selection string `yaml:"selection"`
	Faction   string `yaml:"faction"`
}

type EffectDoc struct {
	Type  string `yaml:"type"`
	Basis string `yaml:"basis"`
	Mode  string `yaml:"mode"`
	Power int32  `yaml:"power"`
}

type StatusOpDoc struct {
	Status string `yaml:"status"`
	Op     string `yaml:"op"`
}

type SkillDoc struct {
	ID          string        `yaml:"id"`
	Name        string        `yaml:"name"`
	Description string        `yaml:"description"`
	Cost        int32         `yaml:"cost"`
	Target      TargetDoc     `yaml:"target"`
	Effect      EffectDoc     `yaml:"effect"`
	Statuses    []StatusOpDoc `yaml:"statuses"`
}

type ItemDoc struct {
	ID          string        `yaml:"id"`
	Name        string        `yaml:"name"`
	Description string        `yaml:"description"`
	Quantity    int32         `yaml:"quantity"`
	Target      TargetDoc     `yaml:"target"`
	Effect      EffectDoc     `yaml:"effect"`
	Statuses    []StatusOpDoc `yaml:"statuses"`
}

type StatsDoc struct {
	ATK   int32 `yaml:"atk"`
	DEF   int32 `yaml:"def"`
	AGI   int32 `yaml:"agi"`
	MaxHP int32 `yaml:"max_hp"`
	MaxSP int32 `yaml:"max_sp"`
}

type EquipmentDoc struct {
	ID    string   `yaml:"id"`
	Name  string   `yaml:"name"`
	Bonus StatsDoc `yaml:"bonus"`
}

type UnitDoc struct {
	ID         string   `yaml:"id"`
	Name       string   `yaml:"name"`
	Stats      StatsDoc `yaml:"stats"`
	StartingSP int32    `yaml:"starting_sp"`
	Skills     []string `yaml:"skills"`
	Equipment  []string `yaml:"equipment"`
}

type StackDoc struct {
	Item  string `yaml:"item"`
	Count int32  `yaml:"count"`
}

type EncounterDoc struct {
	ID         string     `yaml:"id"`
	Name       string     `yaml:"name"`
	Party      []string   `yaml:"party"`
	Enemies    []string   `yaml:"enemies"`
	PartyItems []StackDoc `yaml:"party_items"`
	EnemyItems []StackDoc `yaml:"enemy_items"`
}

var (
	statByName = map[string]Stat{
		"atk": StatATK, "def": StatDEF, "agi": StatAGI,
		"maxhp": StatMaxHP, "max_hp": StatMaxHP,
		"maxsp": StatMaxSP, "max_sp": StatMaxSP,
	}
	modeByName      = map[string]PotencyMode{"flat": PotencyFlat, "percent": PotencyPercent}
	effectByName    = map[string]EffectType{"none": EffectNone, "damage": EffectDamage, "heal": EffectHeal}
	selectionByName = map[string]Selection{"self": SelectSelf, "single": SelectSingle, "multi": SelectMulti, "all": SelectMulti}
	factionByName   = map[string]FactionMask{"enemies": TargetEnemies, "allies": TargetAllies}
	opByName        = map[string]StatusOp{"inflict": OpInflict, "remove": OpRemove}
	categoryByName  = map[string]StatusCategory{"ailment": CategoryAilment, "buff": CategoryBuff, "debuff": CategoryDebuff}
	dotSourceByName = map[string]DotSource{"target": DotFromTarget, "inflictor": DotFromInflictor}
)

// parseEnum looks name up case-insensitively. An empty name yields def.
func parseEnum[T any](kind, name string, table map[string]T, def T) (T, error) {
	if name == "" {
		return def, nil
	}
	v, ok := table[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return def, fmt.Errorf("unknown %s %q", kind, name)
	}
	return v, nil
}

// LoadCatalogFile reads and builds a YAML catalog.
func LoadCatalogFile(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog %s: %w", path, err)
	}
	cat, err := ParseCatalog(raw)
	if err != nil {
		return nil, fmt.Errorf("parsing catalog %s: %w", path, err)
	}
	return cat, nil
}

// ParseCatalog decodes YAML and builds the catalog.
func ParseCatalog(raw []byte) (*Catalog, error) {
	doc, err := ParseDocument(raw)
	if err != nil {
		return nil, err
	}
	return Build(doc)
}

// ParseDocument decodes YAML without resolving references.
func ParseDocument(raw []byte) (CatalogDocument, error) {
	var doc CatalogDocument
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return doc, fmt.Errorf("decoding yaml: %w", err)
	}
	return doc, nil
}

// LoadDocumentFile reads a YAML catalog without resolving references.
func LoadDocumentFile(path string) (CatalogDocument, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return CatalogDocument{}, fmt.Errorf("reading catalog %s: %w", path, err)
	}
	doc, err := ParseDocument(raw)
	if err != nil {
		return doc, fmt.Errorf("parsing catalog %s: %w", path, err)
	}
	return doc, nil
}

// Build resolves references and validates every template.
// All problems are reported together.
func Build(doc CatalogDocument) (*Catalog, error) {
	b := &builder{cat: &Catalog{
		Statuses:   make(map[string]*StatusEffectDefinition, len(doc.Statuses)),
		Skills:     make(map[string]*SkillDefinition, len(doc.Skills)),
		Items:      make(map[string]*ItemDefinition, len(doc.Items)),
		Equipment:  make(map[string]*EquipmentDefinition, len(doc.Equipment)),
		Units:      make(map[string]*UnitTemplate, len(doc.Units)),
		Encounters: make(map[string]*Encounter, len(doc.Encounters)),
	}}

	for i := range doc.Statuses {
		b.status(&doc.Statuses[i])
	}
	for i := range doc.Skills {
		b.skill(&doc.Skills[i])
	}
	for i := range doc.Items {
		b.item(&doc.Items[i])
	}
	for i := range doc.Equipment {
		b.equipment(&doc.Equipment[i])
	}
	for i := range doc.Units {
		b.unit(&doc.Units[i])
	}
	for i := range doc.Encounters {
		b.encounter(&doc.Encounters[i])
	}

	if err := errors.Join(b.errs...); err != nil {
		return nil, err
	}

	slog.Info("loaded catalog",
		"statuses", len(b.cat.Statuses),
		"skills", len(b.cat.Skills),
		"items", len(b.cat.Items),
		"units", len(b.cat.Units),
		"encounters", len(b.cat.Encounters))
	return b.cat, nil
}

type builder struct {
	cat  *Catalog
	errs []error
}

func (b *builder) fail(format string, args ...any) {
	b.errs = append(b.errs, fmt.Errorf(format, args...))
}

// check records err under the given template path and reports whether it was nil.
func (b *builder) check(where string, err error) bool {
	if err != nil {
		b.fail("%s: %w", where, err)
		return false
	}
	return true
}

func (b *builder) claim(kind, id string, taken bool) bool {
	if id == "" {
		b.fail("%s: empty id", kind)
		return false
	}
	if taken {
		b.fail("%s %q: duplicate id", kind, id)
		return false
	}
	return true
}

func (b *builder) status(d *StatusDoc) {
	_, dup := b.cat.Statuses[d.ID]
	if !b.claim("status", d.ID, dup) {
		return
	}
	where := "status " + d.ID
	def := &StatusEffectDefinition{
		ID:                 d.ID,
		Name:               d.Name,
		Description:        d.Description,
		DurationTurns:      d.Duration,
		DamageDealtPercent: d.DamageDealtPercent,
		DamageTakenPercent: d.DamageTakenPercent,
		Triggers: StatusTriggers{
			OnApply:  d.Triggers.OnApply,
			OnExpire: d.Triggers.OnExpire,
			OnTick:   d.Triggers.OnTick,
		},
	}
	var err error
	def.Category, err = parseEnum("category", d.Category, categoryByName, CategoryAilment)
	b.check(where, err)

	for _, m := range d.Modifiers {
		stat, err := parseEnum("stat", m.Stat, statByName, StatATK)
		if !b.check(where, err) {
			continue
		}
		if !stat.Modifiable() {
			b.fail("%s: stat %s cannot be modified", where, stat)
			continue
		}
		mode, err := parseEnum("potency mode", m.Mode, modeByName, PotencyFlat)
		if !b.check(where, err) {
			continue
		}
		def.Modifiers = append(def.Modifiers, StatModifier{Stat: stat, Mode: mode, Power: m.Power})
	}

	if d.DOT != nil {
		dot := DamageOverTime{Active: d.DOT.Active, Power: d.DOT.Power}
		dot.Source, err = parseEnum("dot source", d.DOT.Source, dotSourceByName, DotFromTarget)
		b.check(where, err)
		dot.Basis, err = parseEnum("stat", d.DOT.Basis, statByName, StatMaxHP)
		b.check(where, err)
		dot.Mode, err = parseEnum("potency mode", d.DOT.Mode, modeByName, PotencyFlat)
		b.check(where, err)
		def.DOT = dot
	}

	b.cat.Statuses[def.ID] = def
}

func (b *builder) target(where string, d TargetDoc) TargetSpec {
	var t TargetSpec
	var err error
	t.Selection, err = parseEnum("selection", d.Selection, selectionByName, SelectSingle)
	b.check(where, err)
	t.Faction, err = parseEnum("faction", d.Faction, factionByName, TargetEnemies)
	b.check(where, err)
	return t
}

func (b *builder) effect(where string, d EffectDoc) EffectSpec {
	var e EffectSpec
	var err error
	e.Type, err = parseEnum("effect type", d.Type, effectByName, EffectNone)
	b.check(where, err)
	e.Basis, err = parseEnum("stat", d.Basis, statByName, StatATK)
	b.check(where, err)
	e.Mode, err = parseEnum("potency mode", d.Mode, modeByName, PotencyFlat)
	b.check(where, err)
	e.Power = d.Power
	return e
}

func (b *builder) statusOps(where string, docs []StatusOpDoc) []StatusOperation {
	ops := make([]StatusOperation, 0, len(docs))
	for _, d := range docs {
		def, ok := b.cat.Statuses[d.Status]
		if !ok {
			b.fail("%s: unknown status %q", where, d.Status)
			continue
		}
		op, err := parseEnum("status op", d.Op, opByName, OpInflict)
		if !b.check(where, err) {
			continue
		}
		ops = append(ops, StatusOperation{Status: def, Op: op})
	}
	return ops
}

func (b *builder) skill(d *SkillDoc) {
	_, dup := b.cat.Skills[d.ID]
	if !b.claim("skill", d.ID, dup) {
		return
	}
	where := "skill " + d.ID
	if d.Cost < 0 {
		b.fail("%s: negative cost %d", where, d.Cost)
	}
	b.cat.Skills[d.ID] = &SkillDefinition{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		Cost:        max(d.Cost, 0),
		Target:      b.target(where, d.Target),
		Effect:      b.effect(where, d.Effect),
		Statuses:    b.statusOps(where, d.Statuses),
	}
}

func (b *builder) item(d *ItemDoc) {
	_, dup := b.cat.Items[d.ID]
	if !b.claim("item", d.ID, dup) {
		return
	}
	where := "item " + d.ID
	b.cat.Items[d.ID] = &ItemDefinition{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		Quantity:    max(d.Quantity, 1),
		Target:      b.target(where, d.Target),
		Effect:      b.effect(where, d.Effect),
		Statuses:    b.statusOps(where, d.Statuses),
	}
}

func statsFromDoc(d StatsDoc) Stats {
	return Stats{ATK: d.ATK, DEF: d.DEF, AGI: d.AGI, MaxHP: d.MaxHP, MaxSP: d.MaxSP}
}

func (b *builder) equipment(d *EquipmentDoc) {
	_, dup := b.cat.Equipment[d.ID]
	if !b.claim("equipment", d.ID, dup) {
		return
	}
	b.cat.Equipment[d.ID] = &EquipmentDefinition{ID: d.ID, Name: d.Name, Bonus: statsFromDoc(d.Bonus)}
}

func (b *builder) unit(d *UnitDoc) {
	_, dup := b.cat.Units[d.ID]
	if !b.claim("unit", d.ID, dup) {
		return
	}
	where := "unit " + d.ID
	u := &UnitTemplate{
		ID:         d.ID,
		Name:       d.Name,
		Stats:      statsFromDoc(d.Stats),
		StartingSP: d.StartingSP,
	}
	if u.Name == "" {
		u.Name = u.ID
	}
	if u.Stats.MaxHP <= 0 {
		b.fail("%s: max_hp must be positive", where)
	}
	for _, id := range d.Skills {
		s, ok := b.cat.Skills[id]
		if !ok {
			b.fail("%s: unknown skill %q", where, id)
			continue
		}
		u.Skills = append(u.Skills, s)
	}
	for _, id := range d.Equipment {
		eq, ok := b.cat.Equipment[id]
		if !ok {
			b.fail("%s: unknown equipment %q", where, id)
			continue
		}
		u.Equipment = append(u.Equipment, eq)
	}
	b.cat.Units[u.ID] = u
}

func (b *builder) units(where, side string, ids []string) []*UnitTemplate {
	if len(ids) == 0 {
		b.fail("%s: empty %s", where, side)
	}
	out := make([]*UnitTemplate, 0, len(ids))
	for _, id := range ids {
		u, ok := b.cat.Units[id]
		if !ok {
			b.fail("%s: unknown unit %q in %s", where, id, side)
			continue
		}
		out = append(out, u)
	}
	return out
}

func (b *builder) stacks(where string, docs []StackDoc) []ItemStack {
	out := make([]ItemStack, 0, len(docs))
	for _, d := range docs {
		it, ok := b.cat.Items[d.Item]
		if !ok {
			b.fail("%s: unknown item %q", where, d.Item)
			continue
		}
		if d.Count <= 0 {
			b.fail("%s: item %q count must be positive", where, d.Item)
			continue
		}
		out = append(out, ItemStack{Item: it, Count: d.Count})
	}
	return out
}

func (b *builder) encounter(d *EncounterDoc) {
	_, dup := b.cat.Encounters[d.ID]
	if !b.claim("encounter", d.ID, dup) {
		return
	}
	where := "encounter " + d.ID
	b.cat.Encounters[d.ID] = &Encounter{
		ID:         d.ID,
		Name:       d.Name,
		Party:      b.units(where, "party", d.Party),
		Enemies:    b.units(where, "enemies", d.Enemies),
		PartyItems: b.stacks(where, d.PartyItems),
		EnemyItems: b.stacks(where, d.EnemyItems),
	}
}
