package sqlengine

import (
	"context"
	"errors"
	"strconv"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/AntonStoeckl/dbchanges-go/dbchanges"
)

// Tracker records Snapshots of a fixed set of data sources at a start point and at an end point,
// and computes the Changes between them.
//
// A Tracker is safe for concurrent use. Setting a new start point discards the previous end point.
type Tracker struct {
	source      Source
	dataSources []DataSource

	mu         sync.Mutex
	startPoint []dbchanges.Snapshot
	endPoint   []dbchanges.Snapshot
}

// Track creates a Tracker for the given tables and requests.
func (s Source) Track(dataSources ...DataSource) (*Tracker, error) {
	if len(dataSources) == 0 {
		return nil, dbchanges.ErrNoDataSources
	}

	for _, dataSource := range dataSources {
		if dataSource == nil {
			return nil, dbchanges.ErrNoDataSources
		}
	}

	return &Tracker{
		source:      s,
		dataSources: append([]DataSource(nil), dataSources...),
	}, nil
}

// TrackAllTables creates a Tracker for every table of the current schema.
func (s Source) TrackAllTables(ctx context.Context) (*Tracker, error) {
	names, err := s.ListTables(ctx)
	if err != nil {
		return nil, err
	}

	dataSources := make([]DataSource, 0, len(names))
	for _, name := range names {
		table, tableErr := NewTable(name)
		if tableErr != nil {
			return nil, tableErr
		}
		dataSources = append(dataSources, table)
	}

	return s.Track(dataSources...)
}

// DataSources returns the tracked tables and requests.
func (t *Tracker) DataSources() []DataSource {
	return append([]DataSource(nil), t.dataSources...)
}

// SetStartPointNow captures all data sources as the start point.
func (t *Tracker) SetStartPointNow(ctx context.Context) error {
	snapshots, err := t.captureAll(ctx)
	if err != nil {
		return err
	}

	t.mu.Lock()
	t.startPoint = snapshots
	t.endPoint = nil
	t.mu.Unlock()

	t.source.logOperation(ctx, logMsgStartPointSet, logAttrSourceCount, len(snapshots))

	return nil
}

// SetEndPointNow captures all data sources as the end point.
func (t *Tracker) SetEndPointNow(ctx context.Context) error {
	t.mu.Lock()
	started := t.startPoint != nil
	t.mu.Unlock()

	if !started {
		return dbchanges.ErrStartPointNotSet
	}

	snapshots, err := t.captureAll(ctx)
	if err != nil {
		return err
	}

	t.mu.Lock()
	t.endPoint = snapshots
	t.mu.Unlock()

	t.source.logOperation(ctx, logMsgEndPointSet, logAttrSourceCount, len(snapshots))

	return nil
}

// StartPoint returns the Snapshots captured at the start point, in the order of the data sources.
func (t *Tracker) StartPoint() ([]dbchanges.Snapshot, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.startPoint == nil {
		return nil, dbchanges.ErrStartPointNotSet
	}

	return append([]dbchanges.Snapshot(nil), t.startPoint...), nil
}

// EndPoint returns the Snapshots captured at the end point, in the order of the data sources.
func (t *Tracker) EndPoint() ([]dbchanges.Snapshot, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.endPoint == nil {
		return nil, dbchanges.ErrEndPointNotSet
	}

	return append([]dbchanges.Snapshot(nil), t.endPoint...), nil
}

// Changes computes the Changes between the start point and the end point.
func (t *Tracker) Changes(ctx context.Context) (dbchanges.Changes, error) {
	t.mu.Lock()
	startPoint, endPoint := t.startPoint, t.endPoint
	t.mu.Unlock()

	if startPoint == nil {
		return dbchanges.Changes{}, dbchanges.ErrStartPointNotSet
	}

	if endPoint == nil {
		return dbchanges.Changes{}, dbchanges.ErrEndPointNotSet
	}

	observer, ctx := t.source.startObservation(ctx, spanNameChanges, operationChanges, map[string]string{
		spanAttrSourceCount: strconv.Itoa(len(t.dataSources)),
	})

	pairs := make([]dbchanges.SnapshotPair, len(startPoint))
	for i := range startPoint {
		pairs[i] = dbchanges.SnapshotPair{Start: &startPoint[i], End: &endPoint[i]}
	}

	changes, err := dbchanges.BuildChanges(pairs...)
	if err != nil {
		t.source.logError(ctx, logMsgDiffFailed, err)
		observer.finishError(errorTypeDiff)
		return dbchanges.Changes{}, err
	}

	duration := observer.finishChangesSuccess(changes.Len())
	t.source.logOperation(
		ctx,
		logMsgChangesComputed,
		logAttrChangeCount, changes.Len(),
		logAttrDurationMS, toMilliseconds(duration),
	)

	return changes, nil
}

// captureAll captures every data source, at most captureConcurrency at a time.
func (t *Tracker) captureAll(ctx context.Context) ([]dbchanges.Snapshot, error) {
	snapshots := make([]dbchanges.Snapshot, len(t.dataSources))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(t.source.captureConcurrency)

	for i, dataSource := range t.dataSources {
		group.Go(func() error {
			snapshot, err := t.source.Capture(groupCtx, dataSource)
			if err != nil {
				return err
			}

			snapshots[i] = snapshot

			return nil
		})
	}

	if err := group.Wait(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && !errors.Is(err, ctxErr) {
			return nil, errors.Join(err, ctxErr)
		}

		return nil, err
	}

	return snapshots, nil
}
