package service

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/thinky-app/thinky-sdk/models"
	"gorm.io/datatypes"
)

func TestCoerceIndex(t *testing.T) {
	cases := []struct {
		in   any
		want int
		ok   bool
	}{
		{float64(2), 2, true},
		{float64(2.5), 0, false}, // 非整数下标无效
		{1, 1, true},
		{"1", 1, true},
		{" 3 ", 3, true},
		{"abc", 0, false},
		{"", 0, false},
		{json.Number("4"), 4, true},
		{true, 0, false},
		{nil, 0, false},
	}
	for _, c := range cases {
		got, ok := coerceIndex(c.in)
		if got != c.want || ok != c.ok {
			t.Errorf("coerceIndex(%#v) = (%d, %v), want (%d, %v)", c.in, got, ok, c.want, c.ok)
		}
	}
}

func TestGradeQuestion(t *testing.T) {
	mc := &models.ReviewerQuestion{Type: models.QuestionTypeMultipleChoice, CorrectAnswer: "1"}
	text := &models.ReviewerQuestion{Type: models.QuestionTypeText}

	// 选择题："1" 和 1 判一样
	if !gradeQuestion(mc, float64(1), true) {
		t.Fatalf("numeric answer should match string correct_answer")
	}
	if !gradeQuestion(mc, "1", true) {
		t.Fatalf("string answer should match")
	}
	if gradeQuestion(mc, float64(0), true) {
		t.Fatalf("wrong index should not match")
	}
	if gradeQuestion(mc, "1", false) {
		t.Fatalf("unanswered question is never correct")
	}

	// 填空题：非空即得参与分
	if !gradeQuestion(text, "anything", true) {
		t.Fatalf("non-empty text should score")
	}
	if gradeQuestion(text, "   ", true) {
		t.Fatalf("whitespace-only text should not score")
	}
	if gradeQuestion(text, "", true) {
		t.Fatalf("empty text should not score")
	}
}

func TestGradingService_Grade(t *testing.T) {
	gormDB, mock, sqlDB := newMockDB(t)
	defer func() { _ = sqlDB.Close() }()

	gs := NewGradingService(&Service{DB: gormDB, TablePrefix: "tk_"})

	now := time.Now()
	cols := []string{"id", "reviewer_id", "position", "type", "question", "options", "correct_answer", "points", "created_at", "updated_at"}
	mock.ExpectQuery("SELECT \\* FROM `tk_reviewer_question` WHERE reviewer_id = \\?").
		WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(uint64(1), uint64(7), 0, uint8(1), "2+2?", []byte(`["3","4","5"]`), "1", 2, now, now).
			AddRow(uint64(2), uint64(7), 1, uint8(1), "capital of France?", []byte(`["Paris","Rome"]`), "0", 0, now, now).
			AddRow(uint64(3), uint64(7), 2, uint8(2), "explain photosynthesis", nil, "", 3, now, now))

	ret, err := gs.Grade(GradeRequest{
		ReviewerID: 7,
		Answers: map[string]any{
			"0": "1",        // 数字字符串
			"1": float64(1), // 答错
			"2": "plants make food from light",
		},
	})
	if err != nil {
		t.Fatalf("Grade: %v", err)
	}

	// points<=0 的题按 1 分算：2 + 1 + 3
	if ret.TotalPoints != 6 {
		t.Fatalf("expected total 6, got %d", ret.TotalPoints)
	}
	if ret.EarnedPoints != 5 {
		t.Fatalf("expected earned 5, got %d", ret.EarnedPoints)
	}
	if ret.Percentage != 83.33 {
		t.Fatalf("expected 83.33, got %v", ret.Percentage)
	}
	wantCorrect := []bool{true, false, true}
	for i, r := range ret.Results {
		if r.QuestionIndex != i || r.Correct != wantCorrect[i] {
			t.Fatalf("question %d: %+v", i, r)
		}
	}

	// 判分结果里绝不携带正确答案
	b, err := json.Marshal(ret)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(b), "correct_answer") || strings.Contains(string(b), "correctAnswer") {
		t.Fatalf("grade result leaks correct answer: %s", b)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestGradingService_ListReviewers(t *testing.T) {
	gormDB, mock, sqlDB := newMockDB(t)
	defer func() { _ = sqlDB.Close() }()

	gs := NewGradingService(&Service{DB: gormDB, TablePrefix: "tk_"})

	now := time.Now()
	mock.ExpectQuery("SELECT \\* FROM `tk_reviewer` WHERE `tk_reviewer`\\.`deleted_at` IS NULL ORDER BY created_at DESC LIMIT \\?").
		WithArgs(50).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "description", "subject_id", "created_at", "updated_at", "deleted_at"}).
			AddRow(uint64(11), "期中卷", "代数", uint64(1), now, now, nil).
			AddRow(uint64(12), "期末卷", "", uint64(1), now, now, nil))

	// 题数只发一条分组统计，不逐卷 COUNT
	mock.ExpectQuery("SELECT reviewer_id, COUNT\\(\\*\\) AS count FROM `tk_reviewer_question` WHERE reviewer_id IN \\(\\?,\\?\\) GROUP BY `reviewer_id`").
		WithArgs(uint64(11), uint64(12)).
		WillReturnRows(sqlmock.NewRows([]string{"reviewer_id", "count"}).
			AddRow(uint64(11), int64(8)))

	out, err := gs.ListReviewers(0)
	if err != nil {
		t.Fatalf("ListReviewers: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 reviewers, got %d", len(out))
	}
	if out[0].ID != 11 || out[0].QuestionCount != 8 {
		t.Fatalf("first item: %+v", out[0])
	}
	// 没有题目的卷数量记 0
	if out[1].ID != 12 || out[1].QuestionCount != 0 {
		t.Fatalf("second item: %+v", out[1])
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestNormalizeOptions(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want []string
	}{
		{"json array", `["A","B","C"]`, []string{"A", "B", "C"}},
		{"array of objects", `[{"text":"Yes"},{"label":"No"}]`, []string{"Yes", "No"}},
		{"numeric-keyed object", `{"10":"K","2":"B","1":"A"}`, []string{"A", "B", "K"}},
		{"nested json string", `"[\"X\",\"Y\"]"`, []string{"X", "Y"}},
		{"newline separated string", "\"A\\nB\\nC\"", []string{"A", "B", "C"}},
		{"pipe separated string", `"red|green|blue"`, []string{"red", "green", "blue"}},
		{"scalar number", `42`, []string{"42"}},
		{"empty array", `[]`, []string{}},
	}
	for _, c := range cases {
		got := NormalizeOptions(datatypes.JSON(c.raw))
		if !reflect.DeepEqual(got, c.want) {
			t.Errorf("%s: NormalizeOptions(%s) = %#v, want %#v", c.name, c.raw, got, c.want)
		}
	}

	// 非法 JSON：按原始文本拆
	got := NormalizeOptions(datatypes.JSON("oops|not|json"))
	if !reflect.DeepEqual(got, []string{"oops", "not", "json"}) {
		t.Errorf("raw text fallback: got %#v", got)
	}

	if NormalizeOptions(nil) != nil {
		t.Errorf("nil input should stay nil")
	}
}

func TestReviewerDTO_NoCorrectAnswerField(t *testing.T) {
	// 编译期就没有这个字段，这里防止未来把它加回 DTO
	dto := QuestionDTO{Question: "q", Type: models.QuestionTypeMultipleChoice, Options: []string{"a"}, Points: 1}
	b, err := json.Marshal(dto)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(strings.ToLower(string(b)), "correct") {
		t.Fatalf("question DTO leaks answer data: %s", b)
	}
}
