package block

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/joaoportolan93/Dream-Share-oficial/platform/pg"
)

const (
	pgDeleteBlock = `DELETE
		FROM %s.blocks
		WHERE (json_data->>'from_id')::BIGINT = $1::BIGINT
		AND (json_data->>'to_id')::BIGINT = $2::BIGINT`
	pgInsertBlock = `INSERT INTO %s.blocks(json_data) VALUES($1)`

	pgListBlocks = `SELECT json_data FROM %s.blocks
		%s`

	pgClauseFromIDs = `(json_data->>'from_id')::BIGINT IN (?)`
	pgClauseToIDs   = `(json_data->>'to_id')::BIGINT IN (?)`

	pgIndexPairUnique = `
		CREATE UNIQUE INDEX
			%s
		ON
			%s.blocks(((json_data->>'from_id')::BIGINT), ((json_data->>'to_id')::BIGINT))`

	pgCreateSchema = `CREATE SCHEMA IF NOT EXISTS %s`
	pgCreateTable  = `CREATE TABLE IF NOT EXISTS %s.blocks
		(json_data JSONB NOT NULL)`
	pgDropTable = `DROP TABLE IF EXISTS %s.blocks`
)

type pgService struct {
	db *sqlx.DB
}

// PostgresService returns a Postgres based Service implementation.
func PostgresService(db *sqlx.DB) Service {
	return &pgService{db: db}
}

func (s *pgService) Delete(ns string, fromID, toID uint64) error {
	_, err := s.db.Exec(wrapNamespace(pgDeleteBlock, ns), fromID, toID)
	if err != nil && pg.IsRelationNotFound(pg.WrapError(err)) {
		if err := s.Setup(ns); err != nil {
			return err
		}

		_, err = s.db.Exec(wrapNamespace(pgDeleteBlock, ns), fromID, toID)
	}

	return err
}

func (s *pgService) Put(ns string, b *Block) (*Block, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}

	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now().UTC()
	}

	b.CreatedAt = b.CreatedAt.UTC()

	bs, err := s.Query(ns, QueryOptions{
		FromIDs: []uint64{b.FromID},
		ToIDs:   []uint64{b.ToID},
	})
	if err != nil {
		return nil, err
	}

	// Blocking is idempotent.
	if len(bs) > 0 {
		return bs[0], nil
	}

	data, err := json.Marshal(b)
	if err != nil {
		return nil, err
	}

	_, err = s.db.Exec(wrapNamespace(pgInsertBlock, ns), data)
	if err != nil {
		return nil, err
	}

	return b, nil
}

func (s *pgService) Query(ns string, opts QueryOptions) (List, error) {
	var (
		clauses = []string{}
		params  = []interface{}{}
	)

	if len(opts.FromIDs) > 0 {
		ps := []interface{}{}

		for _, id := range opts.FromIDs {
			ps = append(ps, id)
		}

		clause, _, err := sqlx.In(pgClauseFromIDs, ps)
		if err != nil {
			return nil, err
		}

		clauses = append(clauses, clause)
		params = append(params, ps...)
	}

	if len(opts.ToIDs) > 0 {
		ps := []interface{}{}

		for _, id := range opts.ToIDs {
			ps = append(ps, id)
		}

		clause, _, err := sqlx.In(pgClauseToIDs, ps)
		if err != nil {
			return nil, err
		}

		clauses = append(clauses, clause)
		params = append(params, ps...)
	}

	where := ""

	if len(clauses) > 0 {
		where = sqlx.Rebind(sqlx.DOLLAR, pg.ClausesToWhere(clauses...))
	}

	query := fmt.Sprintf(pgListBlocks, ns, where)

	rows, err := s.db.Query(query, params...)
	if err != nil {
		if pg.IsRelationNotFound(pg.WrapError(err)) {
			if err := s.Setup(ns); err != nil {
				return nil, err
			}

			rows, err = s.db.Query(query, params...)
			if err != nil {
				return nil, err
			}
		} else {
			return nil, err
		}
	}
	defer rows.Close()

	bs := List{}

	for rows.Next() {
		var (
			b = &Block{}

			raw []byte
		)

		err := rows.Scan(&raw)
		if err != nil {
			return nil, err
		}

		err = json.Unmarshal(raw, b)
		if err != nil {
			return nil, err
		}

		bs = append(bs, b)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return bs, nil
}

func (s *pgService) Setup(ns string) error {
	qs := []string{
		wrapNamespace(pgCreateSchema, ns),
		wrapNamespace(pgCreateTable, ns),
		pg.GuardIndex(ns, "block_pair_unique", pgIndexPairUnique),
	}

	for _, query := range qs {
		_, err := s.db.Exec(query)
		if err != nil {
			return fmt.Errorf("query (%s): %s", query, err)
		}
	}

	return nil
}

func (s *pgService) Teardown(ns string) error {
	_, err := s.db.Exec(wrapNamespace(pgDropTable, ns))
	return err
}

func wrapNamespace(query, namespace string) string {
	return fmt.Sprintf(query, namespace)
}
