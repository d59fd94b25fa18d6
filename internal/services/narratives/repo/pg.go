package repo

import (
	"context"
	"encoding/json"
	"time"

	"narrativeradar/internal/core/trend"
	perr "narrativeradar/internal/platform/errors"
	"narrativeradar/internal/platform/logger"
	"narrativeradar/internal/platform/store"
	dom "narrativeradar/internal/services/narratives/domain"
)

const pgSchema = `
CREATE TABLE IF NOT EXISTS narrative_snapshots (
	id              text PRIMARY KEY,
	taken_at        timestamptz NOT NULL,
	narrative_count integer NOT NULL,
	idea_count      integer NOT NULL,
	payload         jsonb NOT NULL
);
CREATE INDEX IF NOT EXISTS narrative_snapshots_taken_at_idx ON narrative_snapshots (taken_at DESC, id DESC);
`

// PG stores snapshots as JSONB rows keyed by run id
type PG struct {
	db  store.TxRunner
	log logger.Logger
}

var _ dom.SnapshotStore = (*PG)(nil)

// NewPG returns a Postgres snapshot store; call Migrate before first use
func NewPG(db store.TxRunner) *PG {
	return &PG{db: db, log: *logger.Named("snapshots.pg")}
}

// Migrate creates the table when missing
func (p *PG) Migrate(ctx context.Context) error {
	if _, err := p.db.Exec(ctx, pgSchema); err != nil {
		return perr.FromPG(err, "migrate narrative_snapshots")
	}
	return nil
}

// Save inserts s under its run id
func (p *PG) Save(ctx context.Context, s trend.Snapshot) (string, error) {
	if s.ID == "" {
		return "", perr.InvalidArgf("snapshot without id")
	}
	payload, err := json.Marshal(s)
	if err != nil {
		return "", perr.Wrapf(err, perr.ErrorCodeJSON, "encode snapshot")
	}
	err = p.db.Tx(ctx, func(q store.RowQuerier) error {
		return store.ExecOne(ctx, q,
			`INSERT INTO narrative_snapshots (id, taken_at, narrative_count, idea_count, payload)
			 VALUES ($1, $2, $3, $4, $5)`,
			s.ID, s.Timestamp.UTC(), len(s.Narratives), s.IdeaCount, payload)
	})
	if err != nil {
		return "", perr.FromPG(err, "insert snapshot")
	}
	return s.ID, nil
}

func scanPayload(r store.Row) (trend.Snapshot, error) {
	var raw []byte
	if err := r.Scan(&raw); err != nil {
		return trend.Snapshot{}, err
	}
	var s trend.Snapshot
	if err := json.Unmarshal(raw, &s); err != nil {
		return trend.Snapshot{}, perr.Wrapf(err, perr.ErrorCodeJSON, "decode snapshot payload")
	}
	return s, nil
}

// Previous loads the newest snapshot other than currentID
func (p *PG) Previous(ctx context.Context, currentID string) (*trend.Snapshot, error) {
	s, err := store.One(ctx, p.db, scanPayload,
		`SELECT payload FROM narrative_snapshots WHERE id <> $1 ORDER BY taken_at DESC, id DESC LIMIT 1`,
		currentID)
	if perr.IsCode(err, perr.ErrorCodeNotFound) {
		return nil, nil
	}
	if perr.IsCode(err, perr.ErrorCodeJSON) {
		p.log.Warn().Err(err).Msg("previous snapshot unreadable, treating as none")
		return nil, nil
	}
	if err != nil {
		return nil, perr.FromPG(err, "load previous snapshot")
	}
	return &s, nil
}

// List returns up to limit snapshots, newest first
func (p *PG) List(ctx context.Context, limit int) ([]dom.SnapshotInfo, error) {
	rows, err := store.Many(ctx, p.db, func(r store.Row) (dom.SnapshotInfo, error) {
		var (
			info dom.SnapshotInfo
			at   time.Time
		)
		err := r.Scan(&info.ID, &at, &info.NarrativeCount, &info.IdeaCount)
		info.Timestamp = at.UTC()
		return info, err
	}, `SELECT id, taken_at, narrative_count, idea_count FROM narrative_snapshots
	    ORDER BY taken_at DESC, id DESC LIMIT $1`, limit)
	if err != nil {
		return nil, perr.FromPG(err, "list snapshots")
	}
	if rows == nil {
		rows = []dom.SnapshotInfo{}
	}
	return rows, nil
}

// Get loads one snapshot by run id
func (p *PG) Get(ctx context.Context, id string) (trend.Snapshot, error) {
	s, err := store.One(ctx, p.db, scanPayload, `SELECT payload FROM narrative_snapshots WHERE id = $1`, id)
	if perr.IsCode(err, perr.ErrorCodeNotFound) {
		return trend.Snapshot{}, perr.NotFoundf("snapshot %q", id)
	}
	if err != nil {
		return trend.Snapshot{}, perr.FromPG(err, "get snapshot")
	}
	return s, nil
}
