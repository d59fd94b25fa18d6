// Package repo implements the narratives persistence ports: snapshot stores
// on disk and Postgres, the ClickHouse score history and result caches
package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"narrativeradar/internal/core/trend"
	perr "narrativeradar/internal/platform/errors"
	"narrativeradar/internal/platform/logger"
	dom "narrativeradar/internal/services/narratives/domain"
)

const (
	filePrefix = "snapshot_"
	fileExt    = ".json"
	fileLayout = "20060102_150405"
)

var fileID = regexp.MustCompile(`^snapshot_\d{8}_\d{6}(_[0-9a-z]+)?$`)

// Files stores one indented JSON file per snapshot. Lexical filename order
// is chronological order
type Files struct {
	dir string
	log logger.Logger
}

var _ dom.SnapshotStore = (*Files)(nil)

// NewFiles creates dir when missing
func NewFiles(dir string) (*Files, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeStorage, "create snapshot dir %s", dir)
	}
	return &Files{dir: dir, log: *logger.Named("snapshots.file")}, nil
}

// Save writes to a temp file and links it under the timestamped name. A name
// already taken within the same second gets the run id as suffix
func (f *Files) Save(_ context.Context, s trend.Snapshot) (string, error) {
	b, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return "", perr.Wrapf(err, perr.ErrorCodeJSON, "encode snapshot")
	}

	tmp, err := os.CreateTemp(f.dir, ".snapshot-*.tmp")
	if err != nil {
		return "", perr.Wrapf(err, perr.ErrorCodeStorage, "create temp snapshot")
	}
	defer func() { _ = os.Remove(tmp.Name()) }()
	if _, err := tmp.Write(b); err != nil {
		_ = tmp.Close()
		return "", perr.Wrapf(err, perr.ErrorCodeStorage, "write temp snapshot")
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return "", perr.Wrapf(err, perr.ErrorCodeStorage, "sync temp snapshot")
	}
	if err := tmp.Close(); err != nil {
		return "", perr.Wrapf(err, perr.ErrorCodeStorage, "close temp snapshot")
	}

	id := filePrefix + s.Timestamp.UTC().Format(fileLayout)
	err = os.Link(tmp.Name(), f.path(id))
	if errors.Is(err, fs.ErrExist) {
		id += "_" + suffix(s.ID)
		err = os.Link(tmp.Name(), f.path(id))
	}
	if err != nil {
		return "", perr.Wrapf(err, perr.ErrorCodeStorage, "publish snapshot %s", id)
	}
	f.log.Info().Str("snapshot", id).Int("narratives", len(s.Narratives)).Msg("snapshot saved")
	return id, nil
}

func suffix(runID string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(runID) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
		if b.Len() == 8 {
			break
		}
	}
	if b.Len() == 0 {
		return "1"
	}
	return b.String()
}

func (f *Files) path(id string) string { return filepath.Join(f.dir, id+fileExt) }

// ids returns every snapshot id, oldest first
func (f *Files) ids() ([]string, error) {
	entries, err := os.ReadDir(f.dir)
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeStorage, "read snapshot dir")
	}
	var out []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, fileExt) {
			continue
		}
		if id := strings.TrimSuffix(name, fileExt); fileID.MatchString(id) {
			out = append(out, id)
		}
	}
	slices.Sort(out)
	return out, nil
}

func (f *Files) read(id string) (trend.Snapshot, error) {
	b, err := os.ReadFile(f.path(id))
	if errors.Is(err, fs.ErrNotExist) {
		return trend.Snapshot{}, perr.ErrNotFound
	}
	if err != nil {
		return trend.Snapshot{}, perr.Wrapf(err, perr.ErrorCodeStorage, "read snapshot %s", id)
	}
	var s trend.Snapshot
	if err := json.Unmarshal(b, &s); err != nil {
		return trend.Snapshot{}, perr.Wrapf(err, perr.ErrorCodeJSON, "decode snapshot %s", id)
	}
	return s, nil
}

// Previous loads the newest snapshot other than currentID. An unreadable
// file counts as no previous snapshot
func (f *Files) Previous(_ context.Context, currentID string) (*trend.Snapshot, error) {
	ids, err := f.ids()
	if err != nil {
		return nil, err
	}
	ids = slices.DeleteFunc(ids, func(id string) bool { return id == currentID })
	if len(ids) == 0 {
		return nil, nil
	}
	last := ids[len(ids)-1]
	s, err := f.read(last)
	if err != nil {
		f.log.Warn().Err(err).Str("snapshot", last).Msg("previous snapshot unreadable, treating as none")
		return nil, nil
	}
	return &s, nil
}

// List reads up to limit snapshots, newest first. Unreadable files are skipped
func (f *Files) List(_ context.Context, limit int) ([]dom.SnapshotInfo, error) {
	ids, err := f.ids()
	if err != nil {
		return nil, err
	}
	slices.Reverse(ids)
	out := []dom.SnapshotInfo{}
	for _, id := range ids {
		if limit > 0 && len(out) >= limit {
			break
		}
		s, err := f.read(id)
		if err != nil {
			f.log.Warn().Err(err).Str("snapshot", id).Msg("skipping unreadable snapshot")
			continue
		}
		out = append(out, dom.Info(id, s))
	}
	return out, nil
}

// Get loads one snapshot. Ids that are not snapshot names are not found
func (f *Files) Get(_ context.Context, id string) (trend.Snapshot, error) {
	if !fileID.MatchString(id) {
		return trend.Snapshot{}, perr.NotFoundf("snapshot %q", id)
	}
	s, err := f.read(id)
	if err != nil {
		return trend.Snapshot{}, err
	}
	return s, nil
}

// String is used in startup logs
func (f *Files) String() string { return fmt.Sprintf("files(%s)", f.dir) }
