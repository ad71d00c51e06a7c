package community

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/joaoportolan93/Dream-Share-oficial/platform/pg"
)

const (
	pgDeleteMembership = `DELETE
		FROM %s.community_members
		WHERE (json_data->>'community_id')::BIGINT = $1::BIGINT
		AND (json_data->>'user_id')::BIGINT = $2::BIGINT`
	pgInsertBan        = `INSERT INTO %s.community_bans(json_data) VALUES($1)`
	pgInsertMembership = `INSERT INTO %s.community_members(json_data) VALUES($1)`
	pgUpdateMembership = `UPDATE %s.community_members
		SET json_data = $3
		WHERE (json_data->>'community_id')::BIGINT = $1::BIGINT
		AND (json_data->>'user_id')::BIGINT = $2::BIGINT`

	pgListBans        = `SELECT json_data FROM %s.community_bans %s`
	pgListMemberships = `SELECT json_data FROM %s.community_members %s`

	pgClauseCommunityIDs = `(json_data->>'community_id')::BIGINT IN (?)`
	pgClauseRoles        = `(json_data->>'role')::TEXT IN (?)`
	pgClauseUserIDs      = `(json_data->>'user_id')::BIGINT IN (?)`

	pgIndexBanPairUnique = `
		CREATE UNIQUE INDEX
			%s
		ON
			%s.community_bans(((json_data->>'community_id')::BIGINT), ((json_data->>'user_id')::BIGINT))`
	pgIndexMemberPairUnique = `
		CREATE UNIQUE INDEX
			%s
		ON
			%s.community_members(((json_data->>'community_id')::BIGINT), ((json_data->>'user_id')::BIGINT))`

	pgCreateSchema    = `CREATE SCHEMA IF NOT EXISTS %s`
	pgCreateBansTable = `CREATE TABLE IF NOT EXISTS %s.community_bans
		(json_data JSONB NOT NULL)`
	pgCreateMembersTable = `CREATE TABLE IF NOT EXISTS %s.community_members
		(json_data JSONB NOT NULL)`
	pgDropBansTable    = `DROP TABLE IF EXISTS %s.community_bans`
	pgDropMembersTable = `DROP TABLE IF EXISTS %s.community_members`
)

type pgService struct {
	db *sqlx.DB
}

// PostgresService returns a Postgres based Service implementation.
func PostgresService(db *sqlx.DB) Service {
	return &pgService{db: db}
}

func (s *pgService) BanPut(ns string, b *Ban) (*Ban, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}

	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now().UTC()
	}

	b.CreatedAt = b.CreatedAt.UTC()

	bs, err := s.BansQuery(ns, QueryOptions{
		CommunityIDs: []uint64{b.CommunityID},
		UserIDs:      []uint64{b.UserID},
	})
	if err != nil {
		return nil, err
	}

	// Banning is idempotent.
	if len(bs) > 0 {
		return bs[0], nil
	}

	data, err := json.Marshal(b)
	if err != nil {
		return nil, err
	}

	_, err = s.db.Exec(wrapNamespace(pgInsertBan, ns), data)
	if err != nil {
		return nil, err
	}

	return b, nil
}

func (s *pgService) BansQuery(ns string, opts QueryOptions) (BanList, error) {
	where, params, err := convertOpts(opts)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(pgListBans, ns, where)

	rows, err := s.queryWithSetup(ns, query, params...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bs := BanList{}

	for rows.Next() {
		var (
			b = &Ban{}

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

func (s *pgService) Delete(ns string, communityID, userID uint64) error {
	_, err := s.db.Exec(wrapNamespace(pgDeleteMembership, ns), communityID, userID)
	if err != nil && pg.IsRelationNotFound(pg.WrapError(err)) {
		if err := s.Setup(ns); err != nil {
			return err
		}

		_, err = s.db.Exec(wrapNamespace(pgDeleteMembership, ns), communityID, userID)
	}

	return err
}

func (s *pgService) Put(ns string, m *Membership) (*Membership, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}

	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}

	m.CreatedAt = m.CreatedAt.UTC()

	ms, err := s.Query(ns, QueryOptions{
		CommunityIDs: []uint64{m.CommunityID},
		UserIDs:      []uint64{m.UserID},
	})
	if err != nil {
		return nil, err
	}

	if len(ms) > 0 {
		m.CreatedAt = ms[0].CreatedAt

		data, err := json.Marshal(m)
		if err != nil {
			return nil, err
		}

		_, err = s.db.Exec(
			wrapNamespace(pgUpdateMembership, ns),
			m.CommunityID,
			m.UserID,
			data,
		)
		if err != nil {
			return nil, err
		}

		return m, nil
	}

	data, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}

	_, err = s.db.Exec(wrapNamespace(pgInsertMembership, ns), data)
	if err != nil {
		return nil, err
	}

	return m, nil
}

func (s *pgService) Query(ns string, opts QueryOptions) (MembershipList, error) {
	where, params, err := convertOpts(opts)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(pgListMemberships, ns, where)

	rows, err := s.queryWithSetup(ns, query, params...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ms := MembershipList{}

	for rows.Next() {
		var (
			m = &Membership{}

			raw []byte
		)

		err := rows.Scan(&raw)
		if err != nil {
			return nil, err
		}

		err = json.Unmarshal(raw, m)
		if err != nil {
			return nil, err
		}

		ms = append(ms, m)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return ms, nil
}

func (s *pgService) Setup(ns string) error {
	qs := []string{
		wrapNamespace(pgCreateSchema, ns),
		wrapNamespace(pgCreateMembersTable, ns),
		wrapNamespace(pgCreateBansTable, ns),
		pg.GuardIndex(ns, "community_member_pair_unique", pgIndexMemberPairUnique),
		pg.GuardIndex(ns, "community_ban_pair_unique", pgIndexBanPairUnique),
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
	qs := []string{
		wrapNamespace(pgDropMembersTable, ns),
		wrapNamespace(pgDropBansTable, ns),
	}

	for _, query := range qs {
		_, err := s.db.Exec(query)
		if err != nil {
			return err
		}
	}

	return nil
}

func (s *pgService) queryWithSetup(
	ns, query string,
	params ...interface{},
) (*sql.Rows, error) {
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

	return rows, nil
}

func convertOpts(opts QueryOptions) (string, []interface{}, error) {
	var (
		clauses = []string{}
		params  = []interface{}{}
	)

	if len(opts.CommunityIDs) > 0 {
		ps := []interface{}{}

		for _, id := range opts.CommunityIDs {
			ps = append(ps, id)
		}

		clause, _, err := sqlx.In(pgClauseCommunityIDs, ps)
		if err != nil {
			return "", nil, err
		}

		clauses = append(clauses, clause)
		params = append(params, ps...)
	}

	if len(opts.Roles) > 0 {
		ps := []interface{}{}

		for _, r := range opts.Roles {
			ps = append(ps, string(r))
		}

		clause, _, err := sqlx.In(pgClauseRoles, ps)
		if err != nil {
			return "", nil, err
		}

		clauses = append(clauses, clause)
		params = append(params, ps...)
	}

	if len(opts.UserIDs) > 0 {
		ps := []interface{}{}

		for _, id := range opts.UserIDs {
			ps = append(ps, id)
		}

		clause, _, err := sqlx.In(pgClauseUserIDs, ps)
		if err != nil {
			return "", nil, err
		}

		clauses = append(clauses, clause)
		params = append(params, ps...)
	}

	where := ""

	if len(clauses) > 0 {
		where = sqlx.Rebind(sqlx.DOLLAR, pg.ClausesToWhere(clauses...))
	}

	return where, params, nil
}

func wrapNamespace(query, namespace string) string {
	return fmt.Sprintf(query, namespace)
}
