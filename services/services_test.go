package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"strings"
	"testing"
	"time"

	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/vnkhanh/questionnaire-server/dto"
	"github.com/vnkhanh/questionnaire-server/metrics"
	"github.com/vnkhanh/questionnaire-server/models"
	"github.com/vnkhanh/questionnaire-server/repository"
	"github.com/vnkhanh/questionnaire-server/testutil"
	"github.com/vnkhanh/questionnaire-server/utils"
)

type fixture struct {
	store          *testutil.Store
	issuer         *utils.TokenIssuer
	auth           *AuthService
	questionnaires *QuestionnaireService
	submissions    *SubmissionService
	stats          *StatsService
	export         *ExportService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := testutil.NewStore()
	issuer, err := utils.NewTokenIssuer("test-secret", 24*time.Hour)
	require.NoError(t, err)

	return &fixture{
		store:          store,
		issuer:         issuer,
		auth:           NewAuthService(store.Users(), issuer, 10),
		questionnaires: NewQuestionnaireService(store.Questionnaires(), store.Users()),
		submissions:    NewSubmissionService(store.Questionnaires(), store.Submissions()),
		stats:          NewStatsService(store.Questionnaires(), store.Submissions()),
		export:         NewExportService(store.Questionnaires(), store.Submissions()),
	}
}

func (f *fixture) register(t *testing.T, username string) uint {
	t.Helper()
	res, err := f.auth.Register(context.Background(), username, "password")
	require.NoError(t, err)
	return res.User.ID
}

func (f *fixture) createQuestionnaire(t *testing.T, ownerID uint, questions ...dto.QuestionInput) uint {
	t.Helper()
	id, err := f.questionnaires.Create(context.Background(), ownerID, dto.CreateQuestionnaireRequest{
		Title:     "Team lunch",
		Questions: questions,
	})
	require.NoError(t, err)
	return id
}

func assertCode(t *testing.T, err error, code ErrorCode, key string) {
	t.Helper()
	se, ok := AsServiceError(err)
	require.True(t, ok, "expected ServiceError, got %v", err)
	assert.Equal(t, code, se.Code)
	if key != "" {
		assert.Equal(t, key, se.Key)
	}
}

// ===== Auth =====

func TestRegisterSameUsernameTwiceConflicts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.auth.Register(ctx, "alice", "first")
	require.NoError(t, err)

	_, err = f.auth.Register(ctx, "alice", "completely-different")
	assertCode(t, err, ErrorConflict, utils.MsgUsernameTaken)

	_, err = f.auth.Register(ctx, "  alice ", "third")
	assertCode(t, err, ErrorConflict, utils.MsgUsernameTaken)
}

func TestRegisterRequiresCredentials(t *testing.T) {
	f := newFixture(t)

	_, err := f.auth.Register(context.Background(), "   ", "pw")
	assertCode(t, err, ErrorInvalid, utils.MsgCredentialsRequired)

	_, err = f.auth.Register(context.Background(), "bob", "")
	assertCode(t, err, ErrorInvalid, utils.MsgCredentialsRequired)
}

func TestRegisterRejectsOversizedCredentials(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.auth.Register(ctx, "longpw", strings.Repeat("p", 80))
	assertCode(t, err, ErrorInvalid, utils.MsgPasswordTooLong)

	_, err = f.auth.Register(ctx, strings.Repeat("u", 256), "password")
	assertCode(t, err, ErrorInvalid, utils.MsgUsernameTooLong)

	// 72 byte là giới hạn của bcrypt, vẫn hợp lệ
	_, err = f.auth.Register(ctx, "edge", strings.Repeat("p", 72))
	require.NoError(t, err)

	// 255 ký tự nhiều byte vẫn nằm trong VARCHAR(255)
	_, err = f.auth.Register(ctx, strings.Repeat("é", 255), "password")
	require.NoError(t, err)

	_, err = f.auth.Login(ctx, "edge", strings.Repeat("p", 72))
	require.NoError(t, err)
}

func TestLoginIssuesTokenForSameUser(t *testing.T) {
	f := newFixture(t)
	id := f.register(t, "alice")

	res, err := f.auth.Login(context.Background(), "alice", "password")
	require.NoError(t, err)
	assert.Equal(t, dto.UserPublic{ID: id, Username: "alice"}, res.User)

	claims, err := f.issuer.VerifyToken(res.Token)
	require.NoError(t, err)
	assert.Equal(t, id, claims.UserID)
	assert.Equal(t, "alice", claims.Username)
}

func TestLoginFailuresLookIdentical(t *testing.T) {
	f := newFixture(t)
	f.register(t, "alice")
	before := promtest.ToFloat64(metrics.LoginFailures)

	_, errWrong := f.auth.Login(context.Background(), "alice", "nope")
	_, errMissing := f.auth.Login(context.Background(), "nobody", "password")

	assertCode(t, errWrong, ErrorUnauthorized, utils.MsgInvalidCredentials)
	assertCode(t, errMissing, ErrorUnauthorized, utils.MsgInvalidCredentials)
	assert.Equal(t, before+2, promtest.ToFloat64(metrics.LoginFailures))
}

func TestCurrentUser(t *testing.T) {
	f := newFixture(t)
	id := f.register(t, "alice")

	u, err := f.auth.CurrentUser(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)

	f.store.DeleteUser(id)
	_, err = f.auth.CurrentUser(context.Background(), id)
	assertCode(t, err, ErrorNotFound, utils.MsgUserNotFound)
}

// ===== Questionnaires =====

func TestCreateQuestionnaireValidation(t *testing.T) {
	f := newFixture(t)
	owner := f.register(t, "alice")

	cases := map[string]dto.CreateQuestionnaireRequest{
		"no questions":         {Title: "T"},
		"empty questions":      {Title: "T", Questions: []dto.QuestionInput{}},
		"blank title":          {Title: "   ", Questions: []dto.QuestionInput{{Text: "Q"}}},
		"blank question":       {Title: "T", Questions: []dto.QuestionInput{{Text: " "}}},
		"unknown type":         {Title: "T", Questions: []dto.QuestionInput{{Text: "Q", Type: "scale"}}},
		"choice without items": {Title: "T", Questions: []dto.QuestionInput{{Text: "Q", Type: "choice", Options: []string{" ", ""}}}},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.questionnaires.Create(context.Background(), owner, req)
			assertCode(t, err, ErrorInvalid, utils.MsgQuestionnaireInvalid)
		})
	}
}

func TestCreateRejectsOversizedTitle(t *testing.T) {
	f := newFixture(t)
	owner := f.register(t, "alice")

	_, err := f.questionnaires.Create(context.Background(), owner, dto.CreateQuestionnaireRequest{
		Title:     strings.Repeat("t", models.MaxTitleLen+1),
		Questions: []dto.QuestionInput{{Text: "Q"}},
	})
	assertCode(t, err, ErrorInvalid, utils.MsgTitleTooLong)

	list, err := f.questionnaires.ListByOwner(context.Background(), owner)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestCreatePersistsQuestionsInCreationOrder(t *testing.T) {
	f := newFixture(t)
	owner := f.register(t, "alice")

	id := f.createQuestionnaire(t, owner,
		dto.QuestionInput{Text: "First", Options: []string{"ignored"}},
		dto.QuestionInput{Text: "Second", Type: "CHOICE", Options: []string{"B", "A"}},
		dto.QuestionInput{Text: "Third"},
	)
	assert.Equal(t, 3, f.store.CountQuestions(id))

	detail, err := f.questionnaires.Get(context.Background(), id)
	require.NoError(t, err)
	require.Len(t, detail.Questions, 3)
	assert.Equal(t, "First", detail.Questions[0].Text)
	assert.Equal(t, models.QuestionTypeText, detail.Questions[0].Type)
	assert.Empty(t, detail.Questions[0].Options)
	assert.NotNil(t, detail.Questions[0].Options)
	assert.Equal(t, "Second", detail.Questions[1].Text)
	assert.Equal(t, models.QuestionTypeChoice, detail.Questions[1].Type)
	require.Len(t, detail.Questions[1].Options, 2)
	assert.Equal(t, "B", detail.Questions[1].Options[0].Text)
	assert.Equal(t, "A", detail.Questions[1].Options[1].Text)
	assert.Equal(t, "Third", detail.Questions[2].Text)
	assert.Equal(t, owner, detail.OwnerID)
	assert.Equal(t, "Team lunch", detail.Title)
}

func TestCreateWithStaleUser(t *testing.T) {
	f := newFixture(t)
	owner := f.register(t, "alice")
	f.store.DeleteUser(owner)

	_, err := f.questionnaires.Create(context.Background(), owner, dto.CreateQuestionnaireRequest{
		Title:     "T",
		Questions: []dto.QuestionInput{{Text: "Q"}},
	})
	assertCode(t, err, ErrorUnauthorized, utils.MsgUserStale)
}

func TestGetMissingQuestionnaire(t *testing.T) {
	f := newFixture(t)
	_, err := f.questionnaires.Get(context.Background(), 999)
	assertCode(t, err, ErrorNotFound, utils.MsgQuestionnaireNotFound)
}

func TestListByOwnerNewestFirst(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "alice")
	bob := f.register(t, "bob")

	first := f.createQuestionnaire(t, alice, dto.QuestionInput{Text: "Q"})
	second := f.createQuestionnaire(t, alice, dto.QuestionInput{Text: "Q"})
	f.createQuestionnaire(t, bob, dto.QuestionInput{Text: "Q"})

	list, err := f.questionnaires.ListByOwner(context.Background(), alice)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second, list[0].ID)
	assert.Equal(t, first, list[1].ID)
}

func TestDeleteOnlyByOwner(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "alice")
	bob := f.register(t, "bob")
	id := f.createQuestionnaire(t, alice, dto.QuestionInput{Text: "Q"})

	err := f.questionnaires.Delete(context.Background(), id, bob)
	assertCode(t, err, ErrorNotFound, utils.MsgQuestionnaireNotFound)

	require.NoError(t, f.questionnaires.Delete(context.Background(), id, alice))
	list, err := f.questionnaires.ListByOwner(context.Background(), alice)
	require.NoError(t, err)
	assert.Empty(t, list)

	err = f.questionnaires.Delete(context.Background(), id, alice)
	assertCode(t, err, ErrorNotFound, utils.MsgQuestionnaireNotFound)
}

func TestDeleteCascadesSubmissions(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "alice")
	id := f.createQuestionnaire(t, alice, dto.QuestionInput{Text: "Q"})
	detail, err := f.questionnaires.Get(context.Background(), id)
	require.NoError(t, err)

	_, err = f.submissions.Submit(context.Background(), id, alice, dto.SubmitRequest{
		Answers: []dto.AnswerInput{{QuestionID: detail.Questions[0].ID, Text: "yes"}},
	})
	require.NoError(t, err)

	require.NoError(t, f.questionnaires.Delete(context.Background(), id, alice))
	assert.Equal(t, 0, f.store.CountSubmissions())
	assert.Equal(t, 0, f.store.CountAnswers())
	assert.Equal(t, 0, f.store.CountQuestions(id))
}

// ===== Submissions =====

func questionIDs(t *testing.T, f *fixture, id uint) []uint {
	t.Helper()
	detail, err := f.questionnaires.Get(context.Background(), id)
	require.NoError(t, err)
	ids := make([]uint, 0, len(detail.Questions))
	for _, q := range detail.Questions {
		ids = append(ids, q.ID)
	}
	return ids
}

func TestSubmitCountMismatchPersistsNothing(t *testing.T) {
	f := newFixture(t)
	owner := f.register(t, "alice")
	id := f.createQuestionnaire(t, owner, dto.QuestionInput{Text: "Q1"}, dto.QuestionInput{Text: "Q2"})
	qids := questionIDs(t, f, id)
	rejected := promtest.ToFloat64(metrics.SubmissionsRejected.WithLabelValues(rejectCountMismatch))

	_, err := f.submissions.Submit(context.Background(), id, owner, dto.SubmitRequest{
		Answers: []dto.AnswerInput{{QuestionID: qids[0], Text: "only one"}},
	})
	assertCode(t, err, ErrorInvalid, utils.MsgSubmissionCountInvalid)
	assert.Equal(t, 0, f.store.CountSubmissions())
	assert.Equal(t, 0, f.store.CountAnswers())
	assert.Equal(t, rejected+1, promtest.ToFloat64(metrics.SubmissionsRejected.WithLabelValues(rejectCountMismatch)))
}

func TestSubmitRejectsForeignAndDuplicateQuestions(t *testing.T) {
	f := newFixture(t)
	owner := f.register(t, "alice")
	id := f.createQuestionnaire(t, owner, dto.QuestionInput{Text: "Q1"}, dto.QuestionInput{Text: "Q2"})
	other := f.createQuestionnaire(t, owner, dto.QuestionInput{Text: "X"})
	qids := questionIDs(t, f, id)
	foreign := questionIDs(t, f, other)[0]

	_, err := f.submissions.Submit(context.Background(), id, owner, dto.SubmitRequest{
		Answers: []dto.AnswerInput{{QuestionID: qids[0], Text: "a"}, {QuestionID: foreign, Text: "b"}},
	})
	assertCode(t, err, ErrorInvalid, utils.MsgSubmissionQuestionBad)

	_, err = f.submissions.Submit(context.Background(), id, owner, dto.SubmitRequest{
		Answers: []dto.AnswerInput{{QuestionID: qids[0], Text: "a"}, {QuestionID: qids[0], Text: "b"}},
	})
	assertCode(t, err, ErrorInvalid, utils.MsgSubmissionQuestionBad)
	assert.Equal(t, 0, f.store.CountSubmissions())
}

func TestSubmitUnknownQuestionnaire(t *testing.T) {
	f := newFixture(t)
	user := f.register(t, "alice")

	_, err := f.submissions.Submit(context.Background(), 404, user, dto.SubmitRequest{})
	assertCode(t, err, ErrorNotFound, utils.MsgQuestionnaireNotFound)
}

func TestSubmitTwiceYieldsIndependentSubmissions(t *testing.T) {
	f := newFixture(t)
	owner := f.register(t, "alice")
	bob := f.register(t, "bob")
	id := f.createQuestionnaire(t, owner, dto.QuestionInput{Text: "Q1"}, dto.QuestionInput{Text: "Q2"})
	qids := questionIDs(t, f, id)

	submit := func(a, b string) uint {
		sid, err := f.submissions.Submit(context.Background(), id, bob, dto.SubmitRequest{
			Answers: []dto.AnswerInput{{QuestionID: qids[1], Text: b}, {QuestionID: qids[0], Text: a}},
		})
		require.NoError(t, err)
		return sid
	}
	first := submit("1a", "1b")
	second := submit("2a", "2b")
	assert.NotEqual(t, first, second)
	assert.Equal(t, 2, f.store.CountSubmissions())
	assert.Equal(t, 4, f.store.CountAnswers())

	views, err := f.submissions.ListWithAnswers(context.Background(), id, owner, "en")
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, second, views[0].SubmissionID)
	assert.Equal(t, "bob", views[0].Username)
	assert.Equal(t, []dto.AnswerView{
		{QuestionID: qids[0], QuestionText: "Q1", AnswerText: "2a"},
		{QuestionID: qids[1], QuestionText: "Q2", AnswerText: "2b"},
	}, views[0].Answers)
	assert.Equal(t, "1a", views[1].Answers[0].AnswerText)
}

func TestSubmitFailureLeavesNoPartialRows(t *testing.T) {
	f := newFixture(t)
	owner := f.register(t, "alice")
	id := f.createQuestionnaire(t, owner, dto.QuestionInput{Text: "Q1"}, dto.QuestionInput{Text: "Q2"})
	qids := questionIDs(t, f, id)
	f.store.FailAnswerInsert = errors.New("disk full")

	_, err := f.submissions.Submit(context.Background(), id, owner, dto.SubmitRequest{
		Answers: []dto.AnswerInput{{QuestionID: qids[0], Text: "a"}, {QuestionID: qids[1], Text: "b"}},
	})
	assertCode(t, err, ErrorPersistence, utils.MsgInternalError)
	assert.Equal(t, 0, f.store.CountSubmissions())
	assert.Equal(t, 0, f.store.CountAnswers())
}

func TestListWithAnswersOwnerOnlyAndAnonymous(t *testing.T) {
	f := newFixture(t)
	owner := f.register(t, "alice")
	bob := f.register(t, "bob")
	id := f.createQuestionnaire(t, owner, dto.QuestionInput{Text: "Q"})
	qids := questionIDs(t, f, id)

	_, err := f.submissions.Submit(context.Background(), id, bob, dto.SubmitRequest{
		Answers: []dto.AnswerInput{{QuestionID: qids[0], Text: "hi"}},
	})
	require.NoError(t, err)

	_, err = f.submissions.ListWithAnswers(context.Background(), id, bob, "en")
	assertCode(t, err, ErrorNotFound, utils.MsgQuestionnaireNotFound)

	f.store.DeleteUser(bob)
	views, err := f.submissions.ListWithAnswers(context.Background(), id, owner, "zh")
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, utils.T("zh", utils.MsgAnonymous), views[0].Username)
	assert.Equal(t, "hi", views[0].Answers[0].AnswerText)
}

func TestListAnsweredByDeduplicates(t *testing.T) {
	f := newFixture(t)
	owner := f.register(t, "alice")
	bob := f.register(t, "bob")
	first := f.createQuestionnaire(t, owner, dto.QuestionInput{Text: "Q"})
	second := f.createQuestionnaire(t, owner, dto.QuestionInput{Text: "Q"})

	for _, id := range []uint{first, first, second} {
		_, err := f.submissions.Submit(context.Background(), id, bob, dto.SubmitRequest{
			Answers: []dto.AnswerInput{{QuestionID: questionIDs(t, f, id)[0], Text: "x"}},
		})
		require.NoError(t, err)
	}

	list, err := f.submissions.ListAnsweredBy(context.Background(), bob)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second, list[0].ID)
	assert.Equal(t, first, list[1].ID)
	assert.Equal(t, "alice", list[0].CreatorName)

	list, err = f.submissions.ListAnsweredBy(context.Background(), owner)
	require.NoError(t, err)
	assert.Empty(t, list)
}

// ===== Stats =====

func TestStatsCountsChoiceOptions(t *testing.T) {
	f := newFixture(t)
	owner := f.register(t, "alice")
	id := f.createQuestionnaire(t, owner,
		dto.QuestionInput{Text: "Pick", Type: "choice", Options: []string{"A", "B"}},
		dto.QuestionInput{Text: "Why"},
	)
	qids := questionIDs(t, f, id)

	for _, pick := range []string{"A", "A", "B"} {
		_, err := f.submissions.Submit(context.Background(), id, owner, dto.SubmitRequest{
			Answers: []dto.AnswerInput{{QuestionID: qids[0], Text: pick}, {QuestionID: qids[1], Text: "because"}},
		})
		require.NoError(t, err)
	}

	stats, err := f.stats.Compute(context.Background(), id, owner)
	require.NoError(t, err)
	require.Len(t, stats, 2)

	assert.Equal(t, int64(3), stats[0].TotalAnswers)
	require.Len(t, stats[0].Options, 2)
	assert.Equal(t, "A", stats[0].Options[0].OptionText)
	assert.Equal(t, int64(2), stats[0].Options[0].Count)
	assert.Equal(t, "B", stats[0].Options[1].OptionText)
	assert.Equal(t, int64(1), stats[0].Options[1].Count)

	assert.Equal(t, int64(3), stats[1].TotalAnswers)
	assert.Nil(t, stats[1].Options)
}

func TestStatsOwnerOnly(t *testing.T) {
	f := newFixture(t)
	owner := f.register(t, "alice")
	bob := f.register(t, "bob")
	id := f.createQuestionnaire(t, owner, dto.QuestionInput{Text: "Q"})

	_, err := f.stats.Compute(context.Background(), id, bob)
	assertCode(t, err, ErrorNotFound, utils.MsgQuestionnaireNotFound)
}

func TestAggregateStatsExactMatch(t *testing.T) {
	questions := []models.Question{
		{ID: 1, Text: "Pick", Type: models.QuestionTypeChoice, Options: []models.Option{{ID: 10, Text: "Yes"}, {ID: 11, Text: "No"}}},
		{ID: 2, Text: "Free", Type: models.QuestionTypeText},
	}
	tallies := []repository.AnswerTally{
		{QuestionID: 1, AnswerText: "Yes", Count: 4},
		{QuestionID: 1, AnswerText: "yes", Count: 1},
		{QuestionID: 1, AnswerText: "Maybe", Count: 2},
	}

	stats := aggregateStats(questions, tallies)
	require.Len(t, stats, 2)
	assert.Equal(t, int64(7), stats[0].TotalAnswers)
	assert.Equal(t, []dto.OptionStats{
		{OptionID: 10, OptionText: "Yes", Count: 4},
		{OptionID: 11, OptionText: "No", Count: 0},
	}, stats[0].Options)
	assert.Equal(t, int64(0), stats[1].TotalAnswers)
}

// ===== Export =====

func seedExport(t *testing.T, f *fixture) (uint, uint) {
	t.Helper()
	owner := f.register(t, "alice")
	id := f.createQuestionnaire(t, owner,
		dto.QuestionInput{Text: "Name"},
		dto.QuestionInput{Text: "Color", Type: "choice", Options: []string{"red", "blue"}},
	)
	qids := questionIDs(t, f, id)
	_, err := f.submissions.Submit(context.Background(), id, owner, dto.SubmitRequest{
		Answers: []dto.AnswerInput{{QuestionID: qids[1], Text: "red"}, {QuestionID: qids[0], Text: "Al, Jr."}},
	})
	require.NoError(t, err)
	return id, owner
}

func TestExportCSV(t *testing.T) {
	f := newFixture(t)
	id, owner := seedExport(t, f)

	file, err := f.export.Export(context.Background(), id, owner, "", "en")
	require.NoError(t, err)
	assert.Equal(t, "text/csv; charset=utf-8", file.ContentType)
	assert.Contains(t, file.Filename, ".csv")

	records, err := csv.NewReader(bytes.NewReader(file.Data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, []string{"submission_id", "username", "submitted_at", "Name", "Color"}, records[0])
	assert.Equal(t, "alice", records[1][1])
	assert.Equal(t, "Al, Jr.", records[1][3])
	assert.Equal(t, "red", records[1][4])
}

func TestExportXLSX(t *testing.T) {
	f := newFixture(t)
	id, owner := seedExport(t, f)

	file, err := f.export.Export(context.Background(), id, owner, "XLSX", "en")
	require.NoError(t, err)
	assert.Contains(t, file.Filename, ".xlsx")

	book, err := excelize.OpenReader(bytes.NewReader(file.Data))
	require.NoError(t, err)
	defer book.Close()

	rows, err := book.GetRows(exportSheet)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Color", rows[0][4])
	assert.Equal(t, "red", rows[1][4])
}

func TestExportRejectsUnknownFormatAndStrangers(t *testing.T) {
	f := newFixture(t)
	id, _ := seedExport(t, f)
	bob := f.register(t, "bob")

	_, err := f.export.Export(context.Background(), id, bob, "pdf", "en")
	assertCode(t, err, ErrorInvalid, utils.MsgExportFormatInvalid)

	_, err = f.export.Export(context.Background(), id, bob, "csv", "en")
	assertCode(t, err, ErrorNotFound, utils.MsgQuestionnaireNotFound)
}
