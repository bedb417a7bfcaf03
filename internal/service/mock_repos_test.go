package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/ryanson7/schedule-app-v3-sub004/internal/model"
	"github.com/ryanson7/schedule-app-v3-sub004/internal/repository"
	pkgerrors "github.com/ryanson7/schedule-app-v3-sub004/pkg/errors"
)

// ── Mock ScheduleRepository ──

type mockScheduleRepo struct {
	schedules map[string]*model.Schedule
	seq       int

	failCreate      error
	failBatchCreate error
	failUpdate      error
}

func newMockScheduleRepo() *mockScheduleRepo {
	return &mockScheduleRepo{schedules: make(map[string]*model.Schedule)}
}

func (m *mockScheduleRepo) Create(_ context.Context, schedule *model.Schedule) error {
	if m.failCreate != nil {
		return m.failCreate
	}
	if schedule.ScheduleID == "" {
		m.seq++
		schedule.ScheduleID = fmt.Sprintf("sched-%d", m.seq)
	}
	if schedule.Version == 0 {
		schedule.Version = 1
	}
	schedule.CreatedAt = time.Now()
	schedule.UpdatedAt = time.Now()
	cp := *schedule
	m.schedules[schedule.ScheduleID] = &cp
	return nil
}

func (m *mockScheduleRepo) BatchCreate(ctx context.Context, schedules []model.Schedule) error {
	if m.failBatchCreate != nil {
		return m.failBatchCreate
	}
	for i := range schedules {
		if err := m.Create(ctx, &schedules[i]); err != nil {
			return err
		}
	}
	return nil
}

func (m *mockScheduleRepo) GetByID(_ context.Context, id string) (*model.Schedule, error) {
	if s, ok := m.schedules[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockScheduleRepo) List(_ context.Context, filter repository.ScheduleFilter, offset, limit int) ([]model.Schedule, int64, error) {
	var matched []model.Schedule
	for _, s := range m.schedules {
		if filter.ActiveOnly && !s.IsActive {
			continue
		}
		if filter.Status != "" && s.ApprovalStatus != filter.Status {
			continue
		}
		if filter.ShootDate != "" && s.ShootDate != filter.ShootDate {
			continue
		}
		if len(filter.StatusIn) > 0 {
			hit := false
			for _, st := range filter.StatusIn {
				if s.ApprovalStatus == st {
					hit = true
					break
				}
			}
			if !hit {
				continue
			}
		}
		matched = append(matched, *s)
	}
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].ShootDate != matched[j].ShootDate {
			return matched[i].ShootDate < matched[j].ShootDate
		}
		return matched[i].StartTime < matched[j].StartTime
	})

	total := int64(len(matched))
	if offset >= len(matched) {
		return nil, total, nil
	}
	end := offset + limit
	if limit <= 0 || end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], total, nil
}

func (m *mockScheduleRepo) ListByParent(_ context.Context, parentID string) ([]model.Schedule, error) {
	var children []model.Schedule
	for _, s := range m.schedules {
		if s.ParentScheduleID != nil && *s.ParentScheduleID == parentID {
			children = append(children, *s)
		}
	}
	sort.Slice(children, func(i, j int) bool {
		return children[i].SegmentOrder < children[j].SegmentOrder
	})
	return children, nil
}

// Update 复刻版本号条件更新：版本不匹配返回 ErrOptimisticLock
func (m *mockScheduleRepo) Update(_ context.Context, schedule *model.Schedule) error {
	if m.failUpdate != nil {
		return m.failUpdate
	}
	stored, ok := m.schedules[schedule.ScheduleID]
	if !ok || stored.Version != schedule.Version {
		return pkgerrors.ErrOptimisticLock
	}
	schedule.Version++
	schedule.UpdatedAt = time.Now()
	cp := *schedule
	m.schedules[schedule.ScheduleID] = &cp
	return nil
}

// snapshot / restore 供 mockTxManager 回滚使用
func (m *mockScheduleRepo) snapshot() map[string]*model.Schedule {
	snap := make(map[string]*model.Schedule, len(m.schedules))
	for id, s := range m.schedules {
		cp := *s
		snap[id] = &cp
	}
	return snap
}

func (m *mockScheduleRepo) restore(snap map[string]*model.Schedule) {
	m.schedules = snap
}

// ── Mock ScheduleHistoryRepository ──

type mockScheduleHistoryRepo struct {
	entries []model.ScheduleHistory
	seq     int

	failAppend error
}

func newMockScheduleHistoryRepo() *mockScheduleHistoryRepo {
	return &mockScheduleHistoryRepo{}
}

func (m *mockScheduleHistoryRepo) Append(_ context.Context, entry *model.ScheduleHistory) error {
	if m.failAppend != nil {
		return m.failAppend
	}
	if entry.HistoryID == "" {
		m.seq++
		entry.HistoryID = fmt.Sprintf("hist-%d", m.seq)
	}
	m.entries = append(m.entries, *entry)
	return nil
}

func (m *mockScheduleHistoryRepo) ListBySchedule(_ context.Context, scheduleID string, offset, limit int) ([]model.ScheduleHistory, int64, error) {
	var matched []model.ScheduleHistory
	for _, e := range m.entries {
		if e.ScheduleID == scheduleID {
			matched = append(matched, e)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].ChangedAt.After(matched[j].ChangedAt)
	})
	total := int64(len(matched))
	if offset >= len(matched) {
		return nil, total, nil
	}
	end := offset + limit
	if limit <= 0 || end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], total, nil
}

func (m *mockScheduleHistoryRepo) bySchedule(scheduleID string) []model.ScheduleHistory {
	var matched []model.ScheduleHistory
	for _, e := range m.entries {
		if e.ScheduleID == scheduleID {
			matched = append(matched, e)
		}
	}
	return matched
}

// ── Mock UserRepository ──

type mockUserRepo struct {
	users map[string]*model.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	if user.UserID == "" {
		user.UserID = "user-" + user.Username
	}
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByUsername(_ context.Context, username string) (*model.User, error) {
	for _, u := range m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) ListByRoles(_ context.Context, roles []string) ([]model.User, error) {
	var result []model.User
	for _, u := range m.users {
		for _, r := range roles {
			if u.Role == r {
				result = append(result, *u)
				break
			}
		}
	}
	return result, nil
}

// ── Mock LocationRepository ──

type mockLocationRepo struct {
	locations map[string]*model.Location
	seq       int
}

func newMockLocationRepo() *mockLocationRepo {
	return &mockLocationRepo{locations: make(map[string]*model.Location)}
}

func (m *mockLocationRepo) Create(_ context.Context, location *model.Location) error {
	if location.LocationID == "" {
		m.seq++
		location.LocationID = fmt.Sprintf("loc-%d", m.seq)
	}
	if location.Version == 0 {
		location.Version = 1
	}
	m.locations[location.LocationID] = location
	return nil
}

func (m *mockLocationRepo) GetByID(_ context.Context, id string) (*model.Location, error) {
	if l, ok := m.locations[id]; ok {
		cp := *l
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockLocationRepo) List(_ context.Context) ([]model.Location, error) {
	var result []model.Location
	for _, l := range m.locations {
		result = append(result, *l)
	}
	return result, nil
}

func (m *mockLocationRepo) Update(_ context.Context, location *model.Location) error {
	stored, ok := m.locations[location.LocationID]
	if !ok || stored.Version != location.Version {
		return pkgerrors.ErrOptimisticLock
	}
	location.Version++
	cp := *location
	m.locations[location.LocationID] = &cp
	return nil
}

// ── Mock NotificationRepository ──

type mockNotificationRepo struct {
	notifications []model.Notification
	seq           int
}

func newMockNotificationRepo() *mockNotificationRepo {
	return &mockNotificationRepo{}
}

func (m *mockNotificationRepo) Create(_ context.Context, notification *model.Notification) error {
	if notification.NotificationID == "" {
		m.seq++
		notification.NotificationID = fmt.Sprintf("notif-%d", m.seq)
	}
	m.notifications = append(m.notifications, *notification)
	return nil
}

func (m *mockNotificationRepo) ListByUser(_ context.Context, userID string, offset, limit int) ([]model.Notification, int64, error) {
	var matched []model.Notification
	for _, n := range m.notifications {
		if n.UserID == userID {
			matched = append(matched, n)
		}
	}
	total := int64(len(matched))
	if offset >= len(matched) {
		return nil, total, nil
	}
	end := offset + limit
	if limit <= 0 || end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], total, nil
}

// ── Mock TxManager ──

var errTxRolledBack = errors.New("事务已回滚")

// mockTxManager 快照式事务：fn 失败时恢复排期与历史数据的事前快照
type mockTxManager struct {
	repos *testRepos
}

func (m *mockTxManager) Transaction(_ context.Context, fn func(txRepo *repository.Repository) error) error {
	schedSnap := m.repos.schedule.snapshot()
	histSnap := make([]model.ScheduleHistory, len(m.repos.history.entries))
	copy(histSnap, m.repos.history.entries)

	if err := fn(m.repos.toRepository()); err != nil {
		m.repos.schedule.restore(schedSnap)
		m.repos.history.entries = histSnap
		return err
	}
	return nil
}

// ── 测试用 Repository 聚合 ──

type testRepos struct {
	schedule     *mockScheduleRepo
	history      *mockScheduleHistoryRepo
	user         *mockUserRepo
	location     *mockLocationRepo
	notification *mockNotificationRepo
}

func newTestRepos() *testRepos {
	return &testRepos{
		schedule:     newMockScheduleRepo(),
		history:      newMockScheduleHistoryRepo(),
		user:         newMockUserRepo(),
		location:     newMockLocationRepo(),
		notification: newMockNotificationRepo(),
	}
}

func (r *testRepos) toRepository() *repository.Repository {
	return &repository.Repository{
		Tx:              &mockTxManager{repos: r},
		User:            r.user,
		Location:        r.location,
		Schedule:        r.schedule,
		ScheduleHistory: r.history,
		Notification:    r.notification,
	}
}
