// Package testutil cung cấp store in-memory thay cho PostgreSQL trong test service và route.
package testutil

import (
	"context"
	"sort"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/vnkhanh/questionnaire-server/models"
	"github.com/vnkhanh/questionnaire-server/repository"
)

// Store giữ dữ liệu trong bộ nhớ và mô phỏng ràng buộc của schema:
// username unique, khoá ngoại owner, ON DELETE CASCADE và SET NULL.
type Store struct {
	mu sync.Mutex

	users          map[uint]models.User
	questionnaires map[uint]models.Questionnaire
	questions      map[uint]models.Question
	options        map[uint]models.Option
	submissions    map[uint]models.Submission
	answers        map[uint]models.Answer

	nextID uint
	clock  time.Time

	// FailAnswerInsert, nếu khác nil, làm hỏng lần insert answer thứ hai của transaction.
	FailAnswerInsert error
}

func NewStore() *Store {
	return &Store{
		users:          map[uint]models.User{},
		questionnaires: map[uint]models.Questionnaire{},
		questions:      map[uint]models.Question{},
		options:        map[uint]models.Option{},
		submissions:    map[uint]models.Submission{},
		answers:        map[uint]models.Answer{},
		clock:          time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (s *Store) id() uint {
	s.nextID++
	return s.nextID
}

// tick: mỗi bản ghi mới muộn hơn bản ghi trước một giây để thứ tự created_at ổn định.
func (s *Store) tick() time.Time {
	s.clock = s.clock.Add(time.Second)
	return s.clock
}

func (s *Store) Users() repository.UserRepository                   { return userStore{s} }
func (s *Store) Questionnaires() repository.QuestionnaireRepository { return questionnaireStore{s} }
func (s *Store) Submissions() repository.SubmissionRepository       { return submissionStore{s} }

// ===== Helpers cho assertion =====

func (s *Store) CountQuestions(questionnaireID uint) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, q := range s.questions {
		if q.QuestionnaireID == questionnaireID {
			n++
		}
	}
	return n
}

func (s *Store) CountSubmissions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.submissions)
}

func (s *Store) CountAnswers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.answers)
}

// DeleteUser mô phỏng xoá user: khảo sát của user bị xoá theo cascade, submission/answer còn lại chuyển thành ẩn danh.
func (s *Store) DeleteUser(id uint) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.users, id)
	for qid, q := range s.questionnaires {
		if q.OwnerID == id {
			s.deleteQuestionnaire(qid)
		}
	}
	for sid, sub := range s.submissions {
		if sub.UserID != nil && *sub.UserID == id {
			sub.UserID = nil
			s.submissions[sid] = sub
		}
	}
	for aid, a := range s.answers {
		if a.UserID != nil && *a.UserID == id {
			a.UserID = nil
			s.answers[aid] = a
		}
	}
}

func (s *Store) deleteQuestionnaire(id uint) {
	delete(s.questionnaires, id)
	for qid, q := range s.questions {
		if q.QuestionnaireID != id {
			continue
		}
		for oid, o := range s.options {
			if o.QuestionID == qid {
				delete(s.options, oid)
			}
		}
		delete(s.questions, qid)
	}
	for sid, sub := range s.submissions {
		if sub.QuestionnaireID == id {
			delete(s.submissions, sid)
		}
	}
	for aid, a := range s.answers {
		if a.QuestionnaireID == id {
			delete(s.answers, aid)
		}
	}
}

// ===== UserRepository =====

type userStore struct{ s *Store }

func (r userStore) Create(_ context.Context, user *models.User) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Username == user.Username {
			return gorm.ErrDuplicatedKey
		}
	}
	user.ID = s.id()
	user.CreatedAt = s.tick()
	s.users[user.ID] = *user
	return nil
}

func (r userStore) FindByUsername(_ context.Context, username string) (*models.User, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Username == username {
			found := u
			return &found, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r userStore) FindByID(_ context.Context, id uint) (*models.User, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

// ===== QuestionnaireRepository =====

type questionnaireStore struct{ s *Store }

func (r questionnaireStore) Create(_ context.Context, q *models.Questionnaire) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[q.OwnerID]; !ok {
		return gorm.ErrForeignKeyViolated
	}

	q.ID = s.id()
	q.CreatedAt = s.tick()
	head := *q
	head.Questions = nil
	s.questionnaires[q.ID] = head

	for i := range q.Questions {
		question := &q.Questions[i]
		question.ID = s.id()
		question.QuestionnaireID = q.ID
		question.Position = i
		question.CreatedAt = q.CreatedAt
		stored := *question
		stored.Options = nil
		s.questions[question.ID] = stored

		for j := range question.Options {
			opt := &question.Options[j]
			opt.ID = s.id()
			opt.QuestionID = question.ID
			opt.Position = j
			opt.CreatedAt = q.CreatedAt
			s.options[opt.ID] = *opt
		}
	}
	return nil
}

func (r questionnaireStore) ListByOwner(_ context.Context, ownerID uint) ([]models.Questionnaire, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	var list []models.Questionnaire
	for _, q := range s.questionnaires {
		if q.OwnerID == ownerID {
			list = append(list, q)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.After(list[j].CreatedAt)
		}
		return list[i].ID > list[j].ID
	})
	return list, nil
}

func (r questionnaireStore) FindOwned(_ context.Context, id, ownerID uint) (*models.Questionnaire, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	q, ok := s.questionnaires[id]
	if !ok || q.OwnerID != ownerID {
		return nil, repository.ErrNotFound
	}
	return &q, nil
}

func (r questionnaireStore) FindWithQuestions(_ context.Context, id uint) (*models.Questionnaire, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	q, ok := s.questionnaires[id]
	if !ok {
		return nil, repository.ErrNotFound
	}

	q.Questions = nil
	for _, question := range s.questions {
		if question.QuestionnaireID != id {
			continue
		}
		question.Options = nil
		for _, o := range s.options {
			if o.QuestionID == question.ID {
				question.Options = append(question.Options, o)
			}
		}
		sort.Slice(question.Options, func(i, j int) bool {
			return byPosition(question.Options[i].Position, question.Options[j].Position, question.Options[i].ID, question.Options[j].ID)
		})
		q.Questions = append(q.Questions, question)
	}
	sort.Slice(q.Questions, func(i, j int) bool {
		return byPosition(q.Questions[i].Position, q.Questions[j].Position, q.Questions[i].ID, q.Questions[j].ID)
	})
	return &q, nil
}

func byPosition(pi, pj int, idi, idj uint) bool {
	if pi != pj {
		return pi < pj
	}
	return idi < idj
}

func (r questionnaireStore) DeleteOwned(_ context.Context, id, ownerID uint) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	q, ok := s.questionnaires[id]
	if !ok || q.OwnerID != ownerID {
		return repository.ErrNotFound
	}
	s.deleteQuestionnaire(id)
	return nil
}

// ===== SubmissionRepository =====

type submissionStore struct{ s *Store }

// Create là tất cả hoặc không có gì, giống transaction trong repository thật.
func (r submissionStore) Create(_ context.Context, sub *models.Submission) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(sub.Answers) > 1 && s.FailAnswerInsert != nil {
		return s.FailAnswerInsert
	}
	for _, a := range sub.Answers {
		if _, ok := s.questions[a.QuestionID]; !ok {
			return gorm.ErrForeignKeyViolated
		}
	}

	sub.ID = s.id()
	if sub.SubmittedAt.IsZero() {
		sub.SubmittedAt = s.tick()
	}
	head := *sub
	head.Answers = nil
	s.submissions[sub.ID] = head

	for i := range sub.Answers {
		a := &sub.Answers[i]
		a.ID = s.id()
		a.SubmissionID = sub.ID
		a.QuestionnaireID = sub.QuestionnaireID
		a.UserID = sub.UserID
		a.CreatedAt = sub.SubmittedAt
		s.answers[a.ID] = *a
	}
	return nil
}

func (r submissionStore) ListByQuestionnaire(_ context.Context, questionnaireID uint) ([]repository.SubmissionRow, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	var rows []repository.SubmissionRow
	for _, sub := range s.submissions {
		if sub.QuestionnaireID != questionnaireID {
			continue
		}
		row := repository.SubmissionRow{ID: sub.ID, SubmittedAt: sub.SubmittedAt}
		if sub.UserID != nil {
			if u, ok := s.users[*sub.UserID]; ok {
				name := u.Username
				row.Username = &name
			}
		}
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].SubmittedAt.Equal(rows[j].SubmittedAt) {
			return rows[i].SubmittedAt.After(rows[j].SubmittedAt)
		}
		return rows[i].ID > rows[j].ID
	})
	return rows, nil
}

func (r submissionStore) ListAnswers(_ context.Context, submissionIDs []uint) ([]repository.AnswerRow, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	wanted := make(map[uint]bool, len(submissionIDs))
	for _, id := range submissionIDs {
		wanted[id] = true
	}

	var rows []repository.AnswerRow
	for _, a := range s.answers {
		if !wanted[a.SubmissionID] {
			continue
		}
		q := s.questions[a.QuestionID]
		rows = append(rows, repository.AnswerRow{
			SubmissionID: a.SubmissionID,
			QuestionID:   a.QuestionID,
			QuestionText: q.Text,
			AnswerText:   a.Text,
			Position:     q.Position,
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].SubmissionID != rows[j].SubmissionID {
			return rows[i].SubmissionID < rows[j].SubmissionID
		}
		return byPosition(rows[i].Position, rows[j].Position, rows[i].QuestionID, rows[j].QuestionID)
	})
	return rows, nil
}

func (r submissionStore) ListAnsweredBy(_ context.Context, userID uint) ([]repository.AnsweredRow, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	latest := map[uint]time.Time{}
	for _, sub := range s.submissions {
		if sub.UserID == nil || *sub.UserID != userID {
			continue
		}
		if t, ok := latest[sub.QuestionnaireID]; !ok || sub.SubmittedAt.After(t) {
			latest[sub.QuestionnaireID] = sub.SubmittedAt
		}
	}

	var rows []repository.AnsweredRow
	for qid, answeredAt := range latest {
		q, ok := s.questionnaires[qid]
		if !ok {
			continue
		}
		owner, ok := s.users[q.OwnerID]
		if !ok {
			continue
		}
		rows = append(rows, repository.AnsweredRow{
			ID:          q.ID,
			Title:       q.Title,
			Description: q.Description,
			CreatorName: owner.Username,
			CreatedAt:   q.CreatedAt,
			AnsweredAt:  answeredAt,
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].AnsweredAt.Equal(rows[j].AnsweredAt) {
			return rows[i].AnsweredAt.After(rows[j].AnsweredAt)
		}
		return rows[i].ID > rows[j].ID
	})
	return rows, nil
}

func (r submissionStore) CountAnswerTexts(_ context.Context, questionnaireID uint) ([]repository.AnswerTally, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	type key struct {
		questionID uint
		text       string
	}
	counts := map[key]int64{}
	for _, a := range s.answers {
		if a.QuestionnaireID == questionnaireID {
			counts[key{a.QuestionID, a.Text}]++
		}
	}

	rows := make([]repository.AnswerTally, 0, len(counts))
	for k, n := range counts {
		rows = append(rows, repository.AnswerTally{QuestionID: k.questionID, AnswerText: k.text, Count: n})
	}
	return rows, nil
}
