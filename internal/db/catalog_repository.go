package db

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/udisondev/skirmish/internal/data"
)

const (
	kindSkill = "skill"
	kindItem  = "item"

	sideParty = "party"
	sideEnemy = "enemy"
)

// CatalogRepository reads and writes authored definitions.
// Rows carry the same string enums as the YAML catalog; data.Build does
// all validation.
type CatalogRepository struct {
	db *pgxpool.Pool
}

// NewCatalogRepository creates a new CatalogRepository.
func NewCatalogRepository(db *pgxpool.Pool) *CatalogRepository {
	return &CatalogRepository{db: db}
}

// Load builds a catalog from the database.
func (r *CatalogRepository) Load(ctx context.Context) (*data.Catalog, error) {
	doc, err := r.LoadDocument(ctx)
	if err != nil {
		return nil, err
	}
	cat, err := data.Build(doc)
	if err != nil {
		return nil, fmt.Errorf("building catalog from database: %w", err)
	}
	return cat, nil
}

// LoadDocument reads every catalog table into a document.
func (r *CatalogRepository) LoadDocument(ctx context.Context) (data.CatalogDocument, error) {
	var doc data.CatalogDocument
	var err error

	if doc.Statuses, err = r.loadStatuses(ctx); err != nil {
		return doc, err
	}
	if doc.Skills, doc.Items, err = r.loadActions(ctx); err != nil {
		return doc, err
	}
	if doc.Equipment, err = r.loadEquipment(ctx); err != nil {
		return doc, err
	}
	if doc.Units, err = r.loadUnits(ctx); err != nil {
		return doc, err
	}
	if doc.Encounters, err = r.loadEncounters(ctx); err != nil {
		return doc, err
	}

	slog.Debug("catalog rows loaded",
		"statuses", len(doc.Statuses),
		"skills", len(doc.Skills),
		"items", len(doc.Items),
		"units", len(doc.Units),
		"encounters", len(doc.Encounters))
	return doc, nil
}

func (r *CatalogRepository) loadStatuses(ctx context.Context) ([]data.StatusDoc, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, name, description, category, duration,
		       damage_dealt_percent, damage_taken_percent,
		       dot_active, dot_source, dot_basis, dot_mode, dot_power,
		       on_apply, on_expire, on_tick
		FROM statuses
		ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("querying statuses: %w", err)
	}
	statuses, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (data.StatusDoc, error) {
		var s data.StatusDoc
		var dot data.DotDoc
		err := row.Scan(&s.ID, &s.Name, &s.Description, &s.Category, &s.Duration,
			&s.DamageDealtPercent, &s.DamageTakenPercent,
			&dot.Active, &dot.Source, &dot.Basis, &dot.Mode, &dot.Power,
			&s.Triggers.OnApply, &s.Triggers.OnExpire, &s.Triggers.OnTick)
		if dot.Active {
			s.DOT = &dot
		}
		return s, err
	})
	if err != nil {
		return nil, fmt.Errorf("scanning statuses: %w", err)
	}

	index := make(map[string]int, len(statuses))
	for i, s := range statuses {
		index[s.ID] = i
	}

	rows, err = r.db.Query(ctx, `
		SELECT status_id, stat, mode, power
		FROM status_modifiers
		ORDER BY status_id, position`)
	if err != nil {
		return nil, fmt.Errorf("querying status modifiers: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var statusID string
		var m data.ModifierDoc
		if err := rows.Scan(&statusID, &m.Stat, &m.Mode, &m.Power); err != nil {
			return nil, fmt.Errorf("scanning status modifier: %w", err)
		}
		if i, ok := index[statusID]; ok {
			statuses[i].Modifiers = append(statuses[i].Modifiers, m)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating status modifiers: %w", err)
	}

	return statuses, nil
}

type actionRow struct {
	kind     string
	id       string
	name     string
	desc     string
	cost     int32
	quantity int32
	target   data.TargetDoc
	effect   data.EffectDoc
}

func (r *CatalogRepository) loadActions(ctx context.Context) ([]data.SkillDoc, []data.ItemDoc, error) {
	rows, err := r.db.Query(ctx, `
		SELECT kind, id, name, description, cost, quantity,
		       selection, faction, effect_type, effect_basis, effect_mode, effect_power
		FROM actions
		ORDER BY kind, id`)
	if err != nil {
		return nil, nil, fmt.Errorf("querying actions: %w", err)
	}
	actions, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (actionRow, error) {
		var a actionRow
		err := row.Scan(&a.kind, &a.id, &a.name, &a.desc, &a.cost, &a.quantity,
			&a.target.Selection, &a.target.Faction,
			&a.effect.Type, &a.effect.Basis, &a.effect.Mode, &a.effect.Power)
		return a, err
	})
	if err != nil {
		return nil, nil, fmt.Errorf("scanning actions: %w", err)
	}

	ops, err := r.loadActionStatuses(ctx)
	if err != nil {
		return nil, nil, err
	}

	var skills []data.SkillDoc
	var items []data.ItemDoc
	for _, a := range actions {
		statuses := ops[a.kind+"/"+a.id]
		switch a.kind {
		case kindSkill:
			skills = append(skills, data.SkillDoc{
				ID: a.id, Name: a.name, Description: a.desc, Cost: a.cost,
				Target: a.target, Effect: a.effect, Statuses: statuses,
			})
		case kindItem:
			items = append(items, data.ItemDoc{
				ID: a.id, Name: a.name, Description: a.desc, Quantity: a.quantity,
				Target: a.target, Effect: a.effect, Statuses: statuses,
			})
		}
	}
	return skills, items, nil
}

func (r *CatalogRepository) loadActionStatuses(ctx context.Context) (map[string][]data.StatusOpDoc, error) {
	rows, err := r.db.Query(ctx, `
		SELECT kind, action_id, status_id, op
		FROM action_statuses
		ORDER BY kind, action_id, position`)
	if err != nil {
		return nil, fmt.Errorf("querying action statuses: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]data.StatusOpDoc)
	for rows.Next() {
		var kind, actionID string
		var op data.StatusOpDoc
		if err := rows.Scan(&kind, &actionID, &op.Status, &op.Op); err != nil {
			return nil, fmt.Errorf("scanning action status: %w", err)
		}
		key := kind + "/" + actionID
		out[key] = append(out[key], op)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating action statuses: %w", err)
	}
	return out, nil
}

func (r *CatalogRepository) loadEquipment(ctx context.Context) ([]data.EquipmentDoc, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, name, atk, def, agi, max_hp, max_sp
		FROM equipment
		ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("querying equipment: %w", err)
	}
	eq, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (data.EquipmentDoc, error) {
		var e data.EquipmentDoc
		err := row.Scan(&e.ID, &e.Name, &e.Bonus.ATK, &e.Bonus.DEF, &e.Bonus.AGI, &e.Bonus.MaxHP, &e.Bonus.MaxSP)
		return e, err
	})
	if err != nil {
		return nil, fmt.Errorf("scanning equipment: %w", err)
	}
	return eq, nil
}

func (r *CatalogRepository) loadUnits(ctx context.Context) ([]data.UnitDoc, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, name, atk, def, agi, max_hp, max_sp, starting_sp
		FROM units
		ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("querying units: %w", err)
	}
	units, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (data.UnitDoc, error) {
		var u data.UnitDoc
		err := row.Scan(&u.ID, &u.Name, &u.Stats.ATK, &u.Stats.DEF, &u.Stats.AGI,
			&u.Stats.MaxHP, &u.Stats.MaxSP, &u.StartingSP)
		return u, err
	})
	if err != nil {
		return nil, fmt.Errorf("scanning units: %w", err)
	}

	index := make(map[string]int, len(units))
	for i, u := range units {
		index[u.ID] = i
	}

	skills, err := r.loadRefs(ctx, `SELECT unit_id, skill_id FROM unit_skills ORDER BY unit_id, position`)
	if err != nil {
		return nil, fmt.Errorf("loading unit skills: %w", err)
	}
	equipment, err := r.loadRefs(ctx, `SELECT unit_id, equipment_id FROM unit_equipment ORDER BY unit_id, position`)
	if err != nil {
		return nil, fmt.Errorf("loading unit equipment: %w", err)
	}
	for id, i := range index {
		units[i].Skills = skills[id]
		units[i].Equipment = equipment[id]
	}
	return units, nil
}

func (r *CatalogRepository) loadEncounters(ctx context.Context) ([]data.EncounterDoc, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name FROM encounters ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("querying encounters: %w", err)
	}
	encounters, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (data.EncounterDoc, error) {
		var e data.EncounterDoc
		err := row.Scan(&e.ID, &e.Name)
		return e, err
	})
	if err != nil {
		return nil, fmt.Errorf("scanning encounters: %w", err)
	}

	index := make(map[string]int, len(encounters))
	for i, e := range encounters {
		index[e.ID] = i
	}

	rows, err = r.db.Query(ctx, `
		SELECT encounter_id, side, unit_id
		FROM encounter_units
		ORDER BY encounter_id, side, position`)
	if err != nil {
		return nil, fmt.Errorf("querying encounter units: %w", err)
	}
	err = forEachRow(rows, func(row pgx.Rows) error {
		var encID, side, unitID string
		if err := row.Scan(&encID, &side, &unitID); err != nil {
			return err
		}
		i, ok := index[encID]
		if !ok {
			return nil
		}
		if side == sideParty {
			encounters[i].Party = append(encounters[i].Party, unitID)
		} else {
			encounters[i].Enemies = append(encounters[i].Enemies, unitID)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning encounter units: %w", err)
	}

	rows, err = r.db.Query(ctx, `
		SELECT encounter_id, side, item_id, count
		FROM encounter_items
		ORDER BY encounter_id, side, position`)
	if err != nil {
		return nil, fmt.Errorf("querying encounter items: %w", err)
	}
	err = forEachRow(rows, func(row pgx.Rows) error {
		var encID, side string
		var st data.StackDoc
		if err := row.Scan(&encID, &side, &st.Item, &st.Count); err != nil {
			return err
		}
		i, ok := index[encID]
		if !ok {
			return nil
		}
		if side == sideParty {
			encounters[i].PartyItems = append(encounters[i].PartyItems, st)
		} else {
			encounters[i].EnemyItems = append(encounters[i].EnemyItems, st)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning encounter items: %w", err)
	}

	return encounters, nil
}

// loadRefs reads ordered (owner, ref) pairs grouped by owner.
func (r *CatalogRepository) loadRefs(ctx context.Context, query string) (map[string][]string, error) {
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	out := make(map[string][]string)
	err = forEachRow(rows, func(row pgx.Rows) error {
		var owner, ref string
		if err := row.Scan(&owner, &ref); err != nil {
			return err
		}
		out[owner] = append(out[owner], ref)
		return nil
	})
	return out, err
}

// Save replaces the whole catalog with doc in one transaction.
func (r *CatalogRepository) Save(ctx context.Context, doc data.CatalogDocument) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	if _, err := tx.Exec(ctx, `
		TRUNCATE encounter_items, encounter_units, encounters,
		         unit_equipment, unit_skills, units, equipment,
		         action_statuses, actions, status_modifiers, statuses`); err != nil {
		return fmt.Errorf("clearing catalog: %w", err)
	}

	batch := &pgx.Batch{}
	for _, s := range doc.Statuses {
		var dot data.DotDoc
		if s.DOT != nil {
			dot = *s.DOT
		}
		batch.Queue(`
			INSERT INTO statuses (id, name, description, category, duration,
			                      damage_dealt_percent, damage_taken_percent,
			                      dot_active, dot_source, dot_basis, dot_mode, dot_power,
			                      on_apply, on_expire, on_tick)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)`,
			s.ID, s.Name, s.Description, orDefault(s.Category, "ailment"), s.Duration,
			s.DamageDealtPercent, s.DamageTakenPercent,
			s.DOT != nil && dot.Active, orDefault(dot.Source, "target"), orDefault(dot.Basis, "maxhp"),
			orDefault(dot.Mode, "flat"), dot.Power,
			s.Triggers.OnApply, s.Triggers.OnExpire, s.Triggers.OnTick)
		for i, m := range s.Modifiers {
			batch.Queue(`INSERT INTO status_modifiers (status_id, position, stat, mode, power) VALUES ($1,$2,$3,$4,$5)`,
				s.ID, i, m.Stat, orDefault(m.Mode, "flat"), m.Power)
		}
	}
	for _, s := range doc.Skills {
		queueAction(batch, kindSkill, s.ID, s.Name, s.Description, s.Cost, 1, s.Target, s.Effect, s.Statuses)
	}
	for _, it := range doc.Items {
		queueAction(batch, kindItem, it.ID, it.Name, it.Description, 0, max(it.Quantity, 1), it.Target, it.Effect, it.Statuses)
	}
	for _, e := range doc.Equipment {
		batch.Queue(`INSERT INTO equipment (id, name, atk, def, agi, max_hp, max_sp) VALUES ($1,$2,$3,$4,$5,$6,$7)`,
			e.ID, e.Name, e.Bonus.ATK, e.Bonus.DEF, e.Bonus.AGI, e.Bonus.MaxHP, e.Bonus.MaxSP)
	}
	for _, u := range doc.Units {
		batch.Queue(`INSERT INTO units (id, name, atk, def, agi, max_hp, max_sp, starting_sp) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
			u.ID, u.Name, u.Stats.ATK, u.Stats.DEF, u.Stats.AGI, u.Stats.MaxHP, u.Stats.MaxSP, u.StartingSP)
		for i, s := range u.Skills {
			batch.Queue(`INSERT INTO unit_skills (unit_id, position, skill_id) VALUES ($1,$2,$3)`, u.ID, i, s)
		}
		for i, e := range u.Equipment {
			batch.Queue(`INSERT INTO unit_equipment (unit_id, position, equipment_id) VALUES ($1,$2,$3)`, u.ID, i, e)
		}
	}
	for _, e := range doc.Encounters {
		batch.Queue(`INSERT INTO encounters (id, name) VALUES ($1,$2)`, e.ID, e.Name)
		queueSide(batch, e.ID, sideParty, e.Party, e.PartyItems)
		queueSide(batch, e.ID, sideEnemy, e.Enemies, e.EnemyItems)
	}

	n := batch.Len()
	br := tx.SendBatch(ctx, batch)
	for range n {
		if _, err := br.Exec(); err != nil {
			br.Close() //nolint:errcheck
			return fmt.Errorf("saving catalog batch: %w", err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("closing catalog batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing catalog save: %w", err)
	}

	slog.Info("catalog saved",
		"statuses", len(doc.Statuses),
		"skills", len(doc.Skills),
		"items", len(doc.Items),
		"units", len(doc.Units),
		"encounters", len(doc.Encounters))
	return nil
}

func queueAction(batch *pgx.Batch, kind, id, name, desc string, cost, quantity int32,
	target data.TargetDoc, effect data.EffectDoc, statuses []data.StatusOpDoc,
) {
	batch.Queue(`
		INSERT INTO actions (kind, id, name, description, cost, quantity,
		                     selection, faction, effect_type, effect_basis, effect_mode, effect_power)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		kind, id, name, desc, cost, quantity,
		orDefault(target.Selection, "single"), orDefault(target.Faction, "enemies"),
		orDefault(effect.Type, "none"), orDefault(effect.Basis, "atk"), orDefault(effect.Mode, "flat"), effect.Power)
	for i, op := range statuses {
		batch.Queue(`INSERT INTO action_statuses (kind, action_id, position, status_id, op) VALUES ($1,$2,$3,$4,$5)`,
			kind, id, i, op.Status, orDefault(op.Op, "inflict"))
	}
}

func queueSide(batch *pgx.Batch, encID, side string, units []string, items []data.StackDoc) {
	for i, u := range units {
		batch.Queue(`INSERT INTO encounter_units (encounter_id, side, position, unit_id) VALUES ($1,$2,$3,$4)`,
			encID, side, i, u)
	}
	for i, st := range items {
		batch.Queue(`INSERT INTO encounter_items (encounter_id, side, position, item_id, count) VALUES ($1,$2,$3,$4,$5)`,
			encID, side, i, st.Item, st.Count)
	}
}

func forEachRow(rows pgx.Rows, fn func(pgx.Rows) error) error {
	defer rows.Close()
	for rows.Next() {
		if err := fn(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
