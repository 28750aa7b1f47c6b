package reconciliation

import (
	"context"
	"errors"
	"maps"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-notify/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-notify/internal/domain/employee"
	"github.com/cmlabs-hris/hris-notify/internal/domain/reconciliation"
	"github.com/cmlabs-hris/hris-notify/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ===== in-memory fakes =====

type memStore struct {
	recons    map[string]reconciliation.Reconciliation
	records   map[string]attendance.Record
	employees map[string]employee.Employee
	updates   []attendance.RecordUpdate

	failUpdateDecision error
	// staleReads makes the next locked attendance reads miss, as when another
	// transaction inserts the row after this one's snapshot.
	staleReads int
}

func newMemStore() *memStore {
	return &memStore{
		recons:    make(map[string]reconciliation.Reconciliation),
		records:   make(map[string]attendance.Record),
		employees: make(map[string]employee.Employee),
	}
}

// fakeTx serializes transactions and restores a snapshot on error.
type fakeTx struct {
	mu sync.Mutex
	st *memStore
}

func (f *fakeTx) WithinTransaction(ctx context.Context, fn func(context.Context) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	recons := maps.Clone(f.st.recons)
	records := maps.Clone(f.st.records)
	if err := fn(ctx); err != nil {
		f.st.recons = recons
		f.st.records = records
		return err
	}
	return nil
}

type fakeReconRepo struct{ st *memStore }

func (r fakeReconRepo) GetByID(_ context.Context, id string) (reconciliation.Reconciliation, error) {
	rec, ok := r.st.recons[id]
	if !ok {
		return reconciliation.Reconciliation{}, reconciliation.ErrReconciliationNotFound
	}
	return rec, nil
}

func (r fakeReconRepo) GetByIDForUpdate(ctx context.Context, id string) (reconciliation.Reconciliation, error) {
	return r.GetByID(ctx, id)
}

func (r fakeReconRepo) Create(_ context.Context, rec reconciliation.Reconciliation) (reconciliation.Reconciliation, error) {
	if rec.ID == "" {
		rec.ID = "R-new"
	}
	rec.CreatedAt = time.Now()
	r.st.recons[rec.ID] = rec
	return rec, nil
}

func (r fakeReconRepo) UpdateDecision(_ context.Context, id string, status reconciliation.Status, reviewedBy string, reviewedAt time.Time) error {
	if r.st.failUpdateDecision != nil {
		return r.st.failUpdateDecision
	}
	rec := r.st.recons[id]
	rec.Status = status
	rec.ReviewedBy = &reviewedBy
	rec.ReviewedAt = &reviewedAt
	r.st.recons[id] = rec
	return nil
}

type fakeAttendanceRepo struct{ st *memStore }

func (r fakeAttendanceRepo) GetByKey(_ context.Context, key string) (attendance.Record, error) {
	rec, ok := r.st.records[key]
	if !ok {
		return attendance.Record{}, attendance.ErrRecordNotFound
	}
	return rec, nil
}

func (r fakeAttendanceRepo) GetByKeyForUpdate(ctx context.Context, key string) (attendance.Record, error) {
	if r.st.staleReads > 0 {
		r.st.staleReads--
		return attendance.Record{}, attendance.ErrRecordNotFound
	}
	return r.GetByKey(ctx, key)
}

func (r fakeAttendanceRepo) Create(_ context.Context, rec attendance.Record) error {
	if _, ok := r.st.records[rec.ID]; ok {
		return attendance.ErrRecordExists
	}
	r.st.records[rec.ID] = rec
	return nil
}

func (r fakeAttendanceRepo) Update(_ context.Context, key string, u attendance.RecordUpdate) error {
	rec, ok := r.st.records[key]
	if !ok {
		return attendance.ErrRecordNotFound
	}
	r.st.updates = append(r.st.updates, u)
	r.st.records[key] = rec.Apply(u)
	return nil
}

type fakeEmployeeRepo struct{ st *memStore }

func (r fakeEmployeeRepo) GetByID(_ context.Context, id string) (employee.Employee, error) {
	e, ok := r.st.employees[id]
	if !ok {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return e, nil
}

func (r fakeEmployeeRepo) GetByIDs(ctx context.Context, ids []string) ([]employee.Employee, error) {
	var out []employee.Employee
	for _, id := range ids {
		if e, err := r.GetByID(ctx, id); err == nil {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r fakeEmployeeRepo) GetByCodes(_ context.Context, codes []string) ([]employee.Employee, error) {
	return nil, nil
}

func (r fakeEmployeeRepo) FindByEmails(_ context.Context, emails []string) ([]employee.Employee, error) {
	return nil, nil
}

func (r fakeEmployeeRepo) Upsert(_ context.Context, e employee.Employee) error {
	r.st.employees[e.ID] = e
	return nil
}

// ===== helpers =====

func newTestService(t *testing.T, st *memStore) reconciliation.ReconciliationService {
	t.Helper()
	flags, err := attendance.NewCutoffFlagResolver("09:30 AM", "01:00 PM")
	require.NoError(t, err)
	return NewReconciliationService(
		&fakeTx{st: st},
		fakeReconRepo{st},
		fakeAttendanceRepo{st},
		fakeEmployeeRepo{st},
		flags,
		time.UTC,
	)
}

func seedR1(st *memStore) {
	bob := "user-bob"
	st.employees["E1"] = employee.Employee{
		ID:           "E1",
		UserID:       &bob,
		EmployeeCode: "EMP-001",
		FullName:     "Bob Santoso",
		Designation:  "Engineer",
		Department:   "R&D",
		Shift:        "General",
	}
	st.recons["R1"] = reconciliation.Reconciliation{
		ID:              "R1",
		EmployeeID:      "E1",
		EmployeeName:    "Bob Santoso",
		AttendanceDate:  "2024-03-01T00:00:00Z",
		RequestedInTime: "2024-03-01T09:15:00Z",
		Type:            reconciliation.TypeAttendance,
		Status:          reconciliation.StatusPending,
	}
}

func approve(id string) reconciliation.DecisionRequest {
	return reconciliation.DecisionRequest{ReconciliationID: id, Action: reconciliation.ActionApprove, Type: reconciliation.TypeAttendance}
}

// ===== tests =====

func TestDecide_ApproveAttendance_CreatesRecord(t *testing.T) {
	st := newMemStore()
	seedR1(st)
	svc := newTestService(t, st)

	got, err := svc.Decide(context.Background(), approve("R1"), "reviewer-1")
	require.NoError(t, err)
	assert.Equal(t, reconciliation.StatusApproved, got.Status)

	rec, ok := st.records["E1_2024-03-01"]
	require.True(t, ok)
	assert.Equal(t, "09:15 AM", rec.InTime)
	assert.True(t, rec.IsReconciled)
	require.NotNil(t, rec.ReconciliationID)
	assert.Equal(t, "R1", *rec.ReconciliationID)
	assert.Equal(t, "Approved", rec.ApprovalStatus)
	assert.Equal(t, attendance.FlagPresent, rec.Flag)
	assert.Equal(t, "Bob Santoso", rec.EmployeeName)
	assert.Equal(t, "EMP-001", rec.EmployeeCode)
	assert.Equal(t, "R&D", rec.Department)
	assert.Equal(t, "General", rec.Shift)
	assert.Len(t, st.records, 1)

	stored := st.recons["R1"]
	assert.Equal(t, reconciliation.StatusApproved, stored.Status)
	require.NotNil(t, stored.ReviewedBy)
	assert.Equal(t, "reviewer-1", *stored.ReviewedBy)
	assert.NotNil(t, stored.ReviewedAt)
}

func TestDecide_ApproveAttendance_LateFlagOverridesDefault(t *testing.T) {
	st := newMemStore()
	seedR1(st)
	r1 := st.recons["R1"]
	r1.RequestedInTime = "2024-03-01T10:05:00Z"
	st.recons["R1"] = r1

	_, err := newTestService(t, st).Decide(context.Background(), approve("R1"), "reviewer-1")
	require.NoError(t, err)
	assert.Equal(t, attendance.FlagLate, st.records["E1_2024-03-01"].Flag)
}

func TestDecide_ApproveAttendance_UpdatesOnlyChangedFields(t *testing.T) {
	st := newMemStore()
	seedR1(st)
	st.records["E1_2024-03-01"] = attendance.Record{
		ID:           "E1_2024-03-01",
		EmployeeID:   "E1",
		Date:         "2024-03-01",
		EmployeeName: "Bob Santoso",
		InTime:       "10:40 AM",
		OutTime:      "06:00 PM",
		Flag:         attendance.FlagLate,
	}

	_, err := newTestService(t, st).Decide(context.Background(), approve("R1"), "reviewer-1")
	require.NoError(t, err)

	require.Len(t, st.updates, 1)
	u := st.updates[0]
	require.NotNil(t, u.InTime)
	assert.Equal(t, "09:15 AM", *u.InTime)
	assert.Nil(t, u.OutTime, "blank requested out-time must not overwrite")
	require.NotNil(t, u.Flag)
	assert.Equal(t, attendance.FlagPresent, *u.Flag)

	rec := st.records["E1_2024-03-01"]
	assert.Equal(t, "06:00 PM", rec.OutTime)
	assert.True(t, rec.IsReconciled)
	assert.Equal(t, "Approved", rec.ApprovalStatus)
}

func TestDecide_NonISOTimesPassThrough(t *testing.T) {
	st := newMemStore()
	seedR1(st)
	r1 := st.recons["R1"]
	r1.RequestedInTime = "09:05 AM"
	r1.RequestedOutTime = "late evening"
	st.recons["R1"] = r1

	_, err := newTestService(t, st).Decide(context.Background(), approve("R1"), "reviewer-1")
	require.NoError(t, err)

	rec := st.records["E1_2024-03-01"]
	assert.Equal(t, "09:05 AM", rec.InTime)
	assert.Equal(t, "late evening", rec.OutTime)
}

func TestDecide_RejectNeverTouchesAttendance(t *testing.T) {
	st := newMemStore()
	seedR1(st)

	got, err := newTestService(t, st).Decide(context.Background(), reconciliation.DecisionRequest{
		ReconciliationID: "R1",
		Action:           reconciliation.ActionReject,
		Type:             reconciliation.TypeAttendance,
	}, "reviewer-1")
	require.NoError(t, err)

	assert.Equal(t, reconciliation.StatusRejected, got.Status)
	assert.Equal(t, reconciliation.StatusRejected, st.recons["R1"].Status)
	assert.Empty(t, st.records)
}

func TestDecide_ApproveBreaktime_OnlyUpdatesStatus(t *testing.T) {
	st := newMemStore()
	seedR1(st)

	_, err := newTestService(t, st).Decide(context.Background(), reconciliation.DecisionRequest{
		ReconciliationID: "R1",
		Action:           reconciliation.ActionApprove,
		Type:             reconciliation.TypeBreaktime,
	}, "reviewer-1")
	require.NoError(t, err)

	assert.Equal(t, reconciliation.StatusApproved, st.recons["R1"].Status)
	assert.Empty(t, st.records)
}

func TestDecide_SecondDecisionIsRejected(t *testing.T) {
	st := newMemStore()
	seedR1(st)
	svc := newTestService(t, st)
	ctx := context.Background()

	_, err := svc.Decide(ctx, approve("R1"), "reviewer-1")
	require.NoError(t, err)
	before := st.records["E1_2024-03-01"]

	_, err = svc.Decide(ctx, approve("R1"), "reviewer-2")
	assert.ErrorIs(t, err, reconciliation.ErrAlreadyDecided)

	_, err = svc.Decide(ctx, reconciliation.DecisionRequest{
		ReconciliationID: "R1",
		Action:           reconciliation.ActionReject,
		Type:             reconciliation.TypeAttendance,
	}, "reviewer-2")
	assert.ErrorIs(t, err, reconciliation.ErrAlreadyDecided)

	assert.Equal(t, before, st.records["E1_2024-03-01"])
	assert.Empty(t, st.updates)
	assert.Equal(t, "reviewer-1", *st.recons["R1"].ReviewedBy)
}

func TestDecide_ConcurrentApprovalsApplyOnce(t *testing.T) {
	st := newMemStore()
	seedR1(st)
	svc := newTestService(t, st)

	const n = 8
	errs := make(chan error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Decide(context.Background(), approve("R1"), "reviewer")
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var ok, conflicts int
	for err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, reconciliation.ErrAlreadyDecided):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, n-1, conflicts)
	assert.Empty(t, st.updates)
}

func TestDecide_ApproveAttendance_RowInsertedConcurrently(t *testing.T) {
	st := newMemStore()
	seedR1(st)
	other := "R0"
	st.records["E1_2024-03-01"] = attendance.Record{
		ID:               "E1_2024-03-01",
		EmployeeID:       "E1",
		Date:             "2024-03-01",
		EmployeeName:     "Bob Santoso",
		InTime:           "08:55 AM",
		OutTime:          "05:00 PM",
		Flag:             attendance.FlagPresent,
		IsReconciled:     true,
		ReconciliationID: &other,
		ApprovalStatus:   attendance.ApprovalStatusApproved,
	}
	st.staleReads = 1

	got, err := newTestService(t, st).Decide(context.Background(), approve("R1"), "reviewer-1")
	require.NoError(t, err)
	assert.Equal(t, reconciliation.StatusApproved, got.Status)

	rec := st.records["E1_2024-03-01"]
	assert.Equal(t, "09:15 AM", rec.InTime)
	assert.Equal(t, "05:00 PM", rec.OutTime)
	assert.Equal(t, "R1", *rec.ReconciliationID)
	require.Len(t, st.updates, 1)
	assert.Nil(t, st.updates[0].OutTime)
	assert.Nil(t, st.updates[0].Flag)
}

func TestDecide_NotFound(t *testing.T) {
	st := newMemStore()
	_, err := newTestService(t, st).Decide(context.Background(), approve("missing"), "reviewer-1")
	assert.ErrorIs(t, err, reconciliation.ErrReconciliationNotFound)
}

func TestDecide_FailureRollsBackAttendance(t *testing.T) {
	st := newMemStore()
	seedR1(st)
	st.failUpdateDecision = errors.New("connection reset")

	_, err := newTestService(t, st).Decide(context.Background(), approve("R1"), "reviewer-1")
	require.Error(t, err)

	assert.Empty(t, st.records)
	assert.Equal(t, reconciliation.StatusPending, st.recons["R1"].Status)
}

func TestDecide_MissingEmployeeProfileIsInternal(t *testing.T) {
	st := newMemStore()
	seedR1(st)
	delete(st.employees, "E1")

	_, err := newTestService(t, st).Decide(context.Background(), approve("R1"), "reviewer-1")
	require.Error(t, err)
	assert.False(t, errors.Is(err, employee.ErrEmployeeNotFound))
	assert.Equal(t, reconciliation.StatusPending, st.recons["R1"].Status)
}

func TestDecide_ValidatesBeforeTouchingStore(t *testing.T) {
	st := newMemStore()
	seedR1(st)
	svc := newTestService(t, st)

	_, err := svc.Decide(context.Background(), reconciliation.DecisionRequest{ReconciliationID: "R1", Action: "approve-ish", Type: "attendance"}, "reviewer-1")
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs.ToMap(), "action")

	_, err = svc.Decide(context.Background(), approve("R1"), "")
	assert.ErrorIs(t, err, reconciliation.ErrMissingReviewer)

	assert.Equal(t, reconciliation.StatusPending, st.recons["R1"].Status)
}

func TestCreate_DenormalizesEmployee(t *testing.T) {
	st := newMemStore()
	seedR1(st)

	got, err := newTestService(t, st).Create(context.Background(), reconciliation.CreateRequest{
		EmployeeID:      "E1",
		AttendanceDate:  "2024-03-02",
		RequestedInTime: "2024-03-02T08:55:00Z",
		InTimeRemarks:   "forgot to clock in",
	}, "user-bob")
	require.NoError(t, err)

	assert.Equal(t, reconciliation.StatusPending, got.Status)
	assert.Equal(t, reconciliation.TypeAttendance, got.Type)
	assert.Equal(t, "Bob Santoso", got.EmployeeName)
	assert.Equal(t, "EMP-001", got.EmployeeCode)
	assert.Equal(t, "Engineer", got.Designation)
}

func TestCreate_UnknownEmployee(t *testing.T) {
	st := newMemStore()
	_, err := newTestService(t, st).Create(context.Background(), reconciliation.CreateRequest{
		EmployeeID:      "nobody",
		AttendanceDate:  "2024-03-02",
		RequestedInTime: "09:00 AM",
	}, "user-bob")
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)
}

func TestCreate_RejectsForeignEmployee(t *testing.T) {
	st := newMemStore()
	seedR1(st)
	before := len(st.recons)
	req := reconciliation.CreateRequest{
		EmployeeID:      "E1",
		AttendanceDate:  "2024-03-02",
		RequestedInTime: "09:00 AM",
	}
	svc := newTestService(t, st)

	_, err := svc.Create(context.Background(), req, "user-mallory")
	assert.ErrorIs(t, err, reconciliation.ErrNotEmployeeOwner)

	unlinked := st.employees["E1"]
	unlinked.UserID = nil
	st.employees["E1"] = unlinked
	_, err = svc.Create(context.Background(), req, "user-bob")
	assert.ErrorIs(t, err, reconciliation.ErrNotEmployeeOwner)

	assert.Len(t, st.recons, before)
}
