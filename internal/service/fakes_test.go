package service

import (
	"context"
	"database/sql"
	"sort"
	"time"

	"issue-tracker-service/internal/domain"
)

// Инмемори-реализации репозиториев для юнит-тестов сервисов.

type fakeUserRepo struct {
	users  map[int64]domain.User
	nextID int64
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[int64]domain.User)}
}

func (f *fakeUserRepo) addUser(u domain.User) domain.User {
	f.nextID++
	u.ID = f.nextID
	f.users[u.ID] = u

	return u
}

func (f *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	f.nextID++
	user.ID = f.nextID
	user.CreatedAt = time.Now().UTC()
	user.UpdatedAt = user.CreatedAt
	f.users[user.ID] = *user

	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id int64) (domain.User, error) {
	u, ok := f.users[id]

	if !ok {
		return domain.User{}, domain.ErrNotFound
	}

	return u, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (domain.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}

	return domain.User{}, domain.ErrNotFound
}

func (f *fakeUserRepo) List(_ context.Context, skip, limit int) ([]domain.User, error) {
	ids := make([]int64, 0, len(f.users))

	for id := range f.users {
		ids = append(ids, id)
	}

	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var res []domain.User

	for i, id := range ids {
		if i < skip {
			continue
		}

		if len(res) >= limit {
			break
		}

		res = append(res, f.users[id])
	}

	return res, nil
}

func (f *fakeUserRepo) Exists(_ context.Context, id int64) (bool, error) {
	_, ok := f.users[id]
	return ok, nil
}

func (f *fakeUserRepo) UsernameExists(_ context.Context, username string) (bool, error) {
	for _, u := range f.users {
		if u.Username == username {
			return true, nil
		}
	}

	return false, nil
}

func (f *fakeUserRepo) EmailExists(_ context.Context, email string) (bool, error) {
	for _, u := range f.users {
		if u.Email == email {
			return true, nil
		}
	}

	return false, nil
}

func (f *fakeUserRepo) SetResetCode(_ context.Context, id int64, code string, expires time.Time) error {
	u, ok := f.users[id]

	if !ok {
		return domain.ErrNotFound
	}

	u.ResetCode = &code
	u.ResetCodeExpires = &expires
	f.users[id] = u

	return nil
}

func (f *fakeUserRepo) UpdatePassword(_ context.Context, id int64, hashedPassword string) error {
	u, ok := f.users[id]

	if !ok {
		return domain.ErrNotFound
	}

	u.HashedPassword = hashedPassword
	u.ResetCode = nil
	u.ResetCodeExpires = nil
	f.users[id] = u

	return nil
}

type fakeIssueRepo struct {
	issues  map[int64]domain.Issue
	history []domain.IssueHistory
	nextID  int64
}

func newFakeIssueRepo() *fakeIssueRepo {
	return &fakeIssueRepo{issues: make(map[int64]domain.Issue)}
}

func (f *fakeIssueRepo) addIssue(issue domain.Issue) domain.Issue {
	f.nextID++
	issue.ID = f.nextID

	if issue.Version == 0 {
		issue.Version = 1
	}

	f.issues[issue.ID] = issue
	return issue
}

func (f *fakeIssueRepo) appendHistory(h domain.IssueHistory) {
	h.ID = int64(len(f.history) + 1)
	f.history = append(f.history, h)
}

func (f *fakeIssueRepo) Create(_ context.Context, issue *domain.Issue) error {
	f.nextID++
	issue.ID = f.nextID
	issue.Version = 1
	issue.CreatedAt = time.Now().UTC()
	issue.UpdatedAt = issue.CreatedAt
	f.issues[issue.ID] = *issue

	created := "Issue created"

	f.appendHistory(domain.IssueHistory{
		IssueID:     issue.ID,
		ChangedByID: issue.CreatorID,
		FieldName:   "created",
		NewValue:    &created,
		ChangedAt:   issue.CreatedAt,
	})

	return nil
}

func (f *fakeIssueRepo) GetByID(_ context.Context, id int64) (domain.Issue, error) {
	issue, ok := f.issues[id]

	if !ok {
		return domain.Issue{}, domain.ErrNotFound
	}

	return issue, nil
}

func (f *fakeIssueRepo) GetByIDs(_ context.Context, ids []int64) ([]domain.Issue, error) {
	var res []domain.Issue

	for _, id := range ids {
		if issue, ok := f.issues[id]; ok {
			res = append(res, issue)
		}
	}

	return res, nil
}

func (f *fakeIssueRepo) List(_ context.Context, filter domain.IssueFilter) ([]domain.Issue, error) {
	ids := make([]int64, 0, len(f.issues))

	for id := range f.issues {
		ids = append(ids, id)
	}

	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var res []domain.Issue

	for _, id := range ids {
		issue := f.issues[id]

		if filter.Status != nil && issue.Status != *filter.Status {
			continue
		}

		if filter.AssigneeID != nil && (issue.AssigneeID == nil || *issue.AssigneeID != *filter.AssigneeID) {
			continue
		}

		if filter.CreatorID != nil && issue.CreatorID != *filter.CreatorID {
			continue
		}

		res = append(res, issue)
	}

	return res, nil
}

func (f *fakeIssueRepo) Update(
	_ context.Context,
	issue domain.Issue,
	expectedVersion int64,
	changes []domain.FieldChange,
	actorID int64,
) error {
	cur, ok := f.issues[issue.ID]

	if !ok || cur.Version != expectedVersion {
		return domain.ErrVersionConflict
	}

	f.issues[issue.ID] = issue

	for _, c := range changes {
		f.appendHistory(domain.IssueHistory{
			IssueID:     issue.ID,
			ChangedByID: actorID,
			FieldName:   c.FieldName,
			OldValue:    c.OldValue,
			NewValue:    c.NewValue,
			ChangedAt:   issue.UpdatedAt,
		})
	}

	return nil
}

func (f *fakeIssueRepo) BulkUpdateStatus(
	_ context.Context,
	issues []domain.Issue,
	status domain.IssueStatus,
	actorID int64,
) (int, error) {
	now := time.Now().UTC()

	for _, issue := range issues {
		cur := f.issues[issue.ID]
		old := string(cur.Status)
		newVal := string(status)

		cur.Status = status
		cur.Version++
		cur.UpdatedAt = now

		if status == domain.IssueStatusResolved && cur.ResolvedAt == nil {
			cur.ResolvedAt = &now
		}

		f.issues[issue.ID] = cur

		f.appendHistory(domain.IssueHistory{
			IssueID:     issue.ID,
			ChangedByID: actorID,
			FieldName:   "status",
			OldValue:    &old,
			NewValue:    &newVal,
			ChangedAt:   now,
		})
	}

	return len(issues), nil
}

func (f *fakeIssueRepo) Delete(_ context.Context, id int64) error {
	if _, ok := f.issues[id]; !ok {
		return domain.ErrNotFound
	}

	delete(f.issues, id)

	var kept []domain.IssueHistory

	for _, h := range f.history {
		if h.IssueID != id {
			kept = append(kept, h)
		}
	}

	f.history = kept
	return nil
}

func (f *fakeIssueRepo) WithTx(ctx context.Context, fn func(ctx context.Context, tx *sql.Tx) error) error {
	return fn(ctx, nil)
}

func (f *fakeIssueRepo) CreateTx(_ context.Context, _ *sql.Tx, issue *domain.Issue) error {
	f.nextID++
	issue.ID = f.nextID
	issue.Version = 1
	issue.CreatedAt = time.Now().UTC()
	issue.UpdatedAt = issue.CreatedAt
	f.issues[issue.ID] = *issue

	return nil
}

type fakeCommentRepo struct {
	comments []domain.Comment
}

func (f *fakeCommentRepo) Create(_ context.Context, comment *domain.Comment) error {
	comment.ID = int64(len(f.comments) + 1)
	comment.CreatedAt = time.Now().UTC()
	comment.UpdatedAt = comment.CreatedAt
	f.comments = append(f.comments, *comment)

	return nil
}

func (f *fakeCommentRepo) ListByIssue(_ context.Context, issueID int64) ([]domain.Comment, error) {
	var res []domain.Comment

	for _, c := range f.comments {
		if c.IssueID == issueID {
			res = append(res, c)
		}
	}

	return res, nil
}

type fakeLabelRepo struct {
	labels      map[int64]domain.Label
	issueLabels map[int64][]int64
	nextID      int64
}

func newFakeLabelRepo() *fakeLabelRepo {
	return &fakeLabelRepo{
		labels:      make(map[int64]domain.Label),
		issueLabels: make(map[int64][]int64),
	}
}

func (f *fakeLabelRepo) addLabel(l domain.Label) domain.Label {
	f.nextID++
	l.ID = f.nextID
	f.labels[l.ID] = l

	return l
}

func (f *fakeLabelRepo) Create(_ context.Context, label *domain.Label) error {
	f.nextID++
	label.ID = f.nextID
	label.CreatedAt = time.Now().UTC()
	f.labels[label.ID] = *label

	return nil
}

func (f *fakeLabelRepo) List(_ context.Context, skip, limit int) ([]domain.Label, error) {
	ids := make([]int64, 0, len(f.labels))

	for id := range f.labels {
		ids = append(ids, id)
	}

	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var res []domain.Label

	for i, id := range ids {
		if i < skip {
			continue
		}

		if len(res) >= limit {
			break
		}

		res = append(res, f.labels[id])
	}

	return res, nil
}

func (f *fakeLabelRepo) GetByIDs(_ context.Context, ids []int64) ([]domain.Label, error) {
	var res []domain.Label

	for _, id := range ids {
		if l, ok := f.labels[id]; ok {
			res = append(res, l)
		}
	}

	return res, nil
}

func (f *fakeLabelRepo) ListByIssue(_ context.Context, issueID int64) ([]domain.Label, error) {
	var res []domain.Label

	for _, id := range f.issueLabels[issueID] {
		if l, ok := f.labels[id]; ok {
			res = append(res, l)
		}
	}

	return res, nil
}

func (f *fakeLabelRepo) NameExists(_ context.Context, name string) (bool, error) {
	for _, l := range f.labels {
		if l.Name == name {
			return true, nil
		}
	}

	return false, nil
}

func (f *fakeLabelRepo) ReplaceForIssue(_ context.Context, issueID int64, labelIDs []int64) error {
	ids := make([]int64, len(labelIDs))
	copy(ids, labelIDs)
	f.issueLabels[issueID] = ids

	return nil
}

// fakeHistoryRepo читает историю, накопленную в fakeIssueRepo.
type fakeHistoryRepo struct {
	issues *fakeIssueRepo
}

func (f *fakeHistoryRepo) ListByIssue(_ context.Context, issueID int64) ([]domain.IssueHistory, error) {
	var res []domain.IssueHistory

	for _, h := range f.issues.history {
		if h.IssueID == issueID {
			res = append(res, h)
		}
	}

	sort.Slice(res, func(i, j int) bool {
		if !res[i].ChangedAt.Equal(res[j].ChangedAt) {
			return res[i].ChangedAt.After(res[j].ChangedAt)
		}

		return res[i].ID > res[j].ID
	})

	return res, nil
}

// stubRand всегда возвращает одно и то же значение — коды получаются
// детерминированными.
type stubRand struct {
	v int
}

func (s stubRand) Intn(n int) int {
	return s.v % n
}
