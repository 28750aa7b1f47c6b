package reconciliation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-notify/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-notify/internal/domain/employee"
	"github.com/cmlabs-hris/hris-notify/internal/domain/reconciliation"
	"github.com/cmlabs-hris/hris-notify/internal/pkg/database"
	"github.com/cmlabs-hris/hris-notify/internal/pkg/timefmt"
)

type service struct {
	tx             database.Transactor
	reconRepo      reconciliation.ReconciliationRepository
	attendanceRepo attendance.AttendanceRepository
	employeeRepo   employee.EmployeeRepository
	flags          attendance.FlagResolver
	loc            *time.Location
	now            func() time.Time
}

func NewReconciliationService(
	tx database.Transactor,
	reconRepo reconciliation.ReconciliationRepository,
	attendanceRepo attendance.AttendanceRepository,
	employeeRepo employee.EmployeeRepository,
	flags attendance.FlagResolver,
	loc *time.Location,
) reconciliation.ReconciliationService {
	if loc == nil {
		loc = time.UTC
	}
	return &service{
		tx:             tx,
		reconRepo:      reconRepo,
		attendanceRepo: attendanceRepo,
		employeeRepo:   employeeRepo,
		flags:          flags,
		loc:            loc,
		now:            time.Now,
	}
}

// Decide locks the reconciliation row, refuses anything that is no longer
// pending, and on an attendance approval upserts the day's attendance record
// before writing the terminal status. Everything commits or nothing does.
func (s *service) Decide(ctx context.Context, req reconciliation.DecisionRequest, reviewerID string) (reconciliation.Reconciliation, error) {
	if err := req.Validate(); err != nil {
		return reconciliation.Reconciliation{}, err
	}
	if reviewerID == "" {
		return reconciliation.Reconciliation{}, reconciliation.ErrMissingReviewer
	}

	var decided reconciliation.Reconciliation
	err := s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		rec, err := s.reconRepo.GetByIDForUpdate(txCtx, req.ReconciliationID)
		if err != nil {
			return err
		}
		if !rec.IsPending() {
			return reconciliation.ErrAlreadyDecided
		}

		if req.Action == reconciliation.ActionApprove && req.Type == reconciliation.TypeAttendance {
			if err := s.applyToAttendance(txCtx, rec); err != nil {
				return err
			}
		}

		reviewedAt := s.now().UTC()
		status := reconciliation.StatusFor(req.Action)
		if err := s.reconRepo.UpdateDecision(txCtx, rec.ID, status, reviewerID, reviewedAt); err != nil {
			return err
		}

		rec.Status = status
		rec.ReviewedBy = &reviewerID
		rec.ReviewedAt = &reviewedAt
		decided = rec
		return nil
	})
	if err != nil {
		return reconciliation.Reconciliation{}, err
	}

	return decided, nil
}

func (s *service) applyToAttendance(ctx context.Context, rec reconciliation.Reconciliation) error {
	date := timefmt.DatePart(rec.AttendanceDate)
	key := attendance.RecordKey(rec.EmployeeID, date)

	inTime := timefmt.Clock12(rec.RequestedInTime, s.loc)
	outTime := timefmt.Clock12(rec.RequestedOutTime, s.loc)
	flag := s.flags.Resolve(inTime)

	existing, err := s.attendanceRepo.GetByKeyForUpdate(ctx, key)
	if errors.Is(err, attendance.ErrRecordNotFound) {
		created, err := s.createRecord(ctx, rec, key, date, inTime, outTime, flag)
		if created || err != nil {
			return err
		}
		// Another approval for the same day committed the row after our read.
		existing, err = s.attendanceRepo.GetByKeyForUpdate(ctx, key)
		if err != nil {
			return fmt.Errorf("reload attendance record %s: %w", key, err)
		}
	} else if err != nil {
		return fmt.Errorf("get attendance record %s: %w", key, err)
	}

	update := changedFields(existing, inTime, outTime, flag, rec.ID)
	if update.IsEmpty() {
		return nil
	}
	return s.attendanceRepo.Update(ctx, key, update)
}

// createRecord inserts the day's record, denormalizing the employee profile.
// created is false when the key was taken concurrently.
func (s *service) createRecord(ctx context.Context, rec reconciliation.Reconciliation, key, date, inTime, outTime string, flag attendance.Flag) (created bool, err error) {
	emp, err := s.employeeRepo.GetByID(ctx, rec.EmployeeID)
	if err != nil {
		// A missing profile here is a data integrity failure, not a 404.
		return false, fmt.Errorf("load employee profile %s: %v", rec.EmployeeID, err)
	}

	recID := rec.ID
	record := attendance.Record{
		ID:               key,
		EmployeeID:       rec.EmployeeID,
		Date:             date,
		EmployeeName:     emp.FullName,
		EmployeeCode:     emp.EmployeeCode,
		Designation:      emp.Designation,
		Department:       emp.Department,
		Shift:            emp.Shift,
		InTime:           inTime,
		OutTime:          outTime,
		Flag:             attendance.FlagPresent,
		IsReconciled:     true,
		ReconciliationID: &recID,
		ApprovalStatus:   attendance.ApprovalStatusApproved,
	}
	if flag != "" {
		record.Flag = flag
	}

	err = s.attendanceRepo.Create(ctx, record)
	if errors.Is(err, attendance.ErrRecordExists) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// changedFields builds a partial update holding only values that differ from
// the existing record. Blank requested times leave the stored time alone.
func changedFields(existing attendance.Record, inTime, outTime string, flag attendance.Flag, reconciliationID string) attendance.RecordUpdate {
	var u attendance.RecordUpdate
	if inTime != "" && inTime != existing.InTime {
		u.InTime = &inTime
	}
	if outTime != "" && outTime != existing.OutTime {
		u.OutTime = &outTime
	}
	if flag != "" && flag != existing.Flag {
		u.Flag = &flag
	}
	if !existing.IsReconciled {
		reconciled := true
		u.IsReconciled = &reconciled
	}
	if existing.ReconciliationID == nil || *existing.ReconciliationID != reconciliationID {
		u.ReconciliationID = &reconciliationID
	}
	if existing.ApprovalStatus != attendance.ApprovalStatusApproved {
		approved := attendance.ApprovalStatusApproved
		u.ApprovalStatus = &approved
	}
	return u
}

// Create records a pending reconciliation, denormalizing the employee profile.
func (s *service) Create(ctx context.Context, req reconciliation.CreateRequest, requesterID string) (reconciliation.Reconciliation, error) {
	if err := req.Validate(); err != nil {
		return reconciliation.Reconciliation{}, err
	}

	emp, err := s.employeeRepo.GetByID(ctx, req.EmployeeID)
	if err != nil {
		return reconciliation.Reconciliation{}, err
	}
	if requesterID == "" || emp.UserID == nil || *emp.UserID != requesterID {
		return reconciliation.Reconciliation{}, reconciliation.ErrNotEmployeeOwner
	}

	recType := req.Type
	if recType == "" {
		recType = reconciliation.TypeAttendance
	}

	return s.reconRepo.Create(ctx, reconciliation.Reconciliation{
		EmployeeID:       emp.ID,
		EmployeeName:     emp.FullName,
		EmployeeCode:     emp.EmployeeCode,
		Designation:      emp.Designation,
		AttendanceDate:   req.AttendanceDate,
		RequestedInTime:  req.RequestedInTime,
		RequestedOutTime: req.RequestedOutTime,
		InTimeRemarks:    req.InTimeRemarks,
		OutTimeRemarks:   req.OutTimeRemarks,
		Type:             recType,
		Status:           reconciliation.StatusPending,
	})
}

func (s *service) GetByID(ctx context.Context, id string) (reconciliation.Reconciliation, error) {
	return s.reconRepo.GetByID(ctx, id)
}
