package service

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/thinky-app/thinky-sdk/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// GradingService 答卷判分
// 判分结果绝不回传正确答案：响应里只有对错与得分。
type GradingService struct {
	*Service
}

func NewGradingService(s *Service) *GradingService {
	return &GradingService{Service: s}
}

// GradeRequest 判分请求：answers 以题号（字符串）为键，值是选项下标或文本。
type GradeRequest struct {
	ReviewerID uint64         `json:"reviewerId"`
	Answers    map[string]any `json:"answers"`
}

// QuestionResult 单题判分结果（不含正确答案）
type QuestionResult struct {
	QuestionIndex int  `json:"questionIndex"`
	Correct       bool `json:"correct"`
	EarnedPoints  int  `json:"earnedPoints"`
}

// GradeResult 判分汇总
type GradeResult struct {
	TotalPoints  int              `json:"totalPoints"`
	EarnedPoints int              `json:"earnedPoints"`
	Percentage   float64          `json:"percentage"`
	Results      []QuestionResult `json:"results"`
}

// coerceIndex 把“选项下标”的各种形态统一成 int：
// JSON number（float64）、数字字符串（历史数据里 correct_answer 常存成 "1"）。
func coerceIndex(v any) (int, bool) {
	switch x := v.(type) {
	case float64:
		if x != math.Trunc(x) {
			return 0, false
		}
		return int(x), true
	case int:
		return x, true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(x))
		if err != nil {
			return 0, false
		}
		return n, true
	case json.Number:
		n, err := x.Int64()
		if err != nil {
			return 0, false
		}
		return int(n), true
	}
	return 0, false
}

// gradeQuestion 单题判分。
// 选择题：下标精确匹配（两边都先做数字化强转）。
// 填空题：非空即给分——这是沿用的“参与分”语义，等同于待人工复核的占位判分。
func gradeQuestion(q *models.ReviewerQuestion, answer any, answered bool) bool {
	if !answered {
		return false
	}
	switch q.Type {
	case models.QuestionTypeMultipleChoice:
		want, ok := coerceIndex(q.CorrectAnswer)
		if !ok {
			return false
		}
		got, ok := coerceIndex(answer)
		return ok && got == want
	case models.QuestionTypeText:
		return strings.TrimSpace(fmt.Sprint(answer)) != ""
	}
	return false
}

// Grade 给整卷判分。题目按 position 升序编号，与客户端的 questionIndex 对齐。
func (s *GradingService) Grade(req GradeRequest) (*GradeResult, error) {
	if req.ReviewerID == 0 {
		return nil, fmt.Errorf("reviewerId is required")
	}

	var questions []models.ReviewerQuestion
	if err := s.DB.Where("reviewer_id = ?", req.ReviewerID).
		Order("position ASC, id ASC").
		Find(&questions).Error; err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return nil, fmt.Errorf("reviewer %d has no questions", req.ReviewerID)
	}

	result := &GradeResult{Results: make([]QuestionResult, 0, len(questions))}
	for i := range questions {
		q := &questions[i]
		points := q.Points
		if points <= 0 {
			points = 1
		}
		result.TotalPoints += points

		answer, answered := req.Answers[strconv.Itoa(i)]
		correct := gradeQuestion(q, answer, answered)

		earned := 0
		if correct {
			earned = points
			result.EarnedPoints += points
		}
		result.Results = append(result.Results, QuestionResult{
			QuestionIndex: i,
			Correct:       correct,
			EarnedPoints:  earned,
		})
	}

	if result.TotalPoints > 0 {
		result.Percentage = math.Round(float64(result.EarnedPoints)/float64(result.TotalPoints)*10000) / 100
	}
	return result, nil
}

// ReviewerDTO 复习卷（对外，已剥离正确答案）
type ReviewerDTO struct {
	ID          uint64        `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description,omitempty"`
	Questions   []QuestionDTO `json:"questions"`
}

// QuestionDTO 题目（对外）。Options 已归一化；CorrectAnswer 永远不出现在这里。
type QuestionDTO struct {
	QuestionIndex int      `json:"questionIndex"`
	Type          uint8    `json:"type"`
	Question      string   `json:"question"`
	Options       []string `json:"options,omitempty"`
	Points        int      `json:"points"`
}

// GetReviewer 取卷（答题端用）：题目按 position 排序、选项归一化、答案剥离。
func (s *GradingService) GetReviewer(id uint64) (*ReviewerDTO, error) {
	var r models.Reviewer
	if err := s.DB.Preload("Questions", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC, id ASC")
	}).First(&r, id).Error; err != nil {
		return nil, err
	}

	dto := &ReviewerDTO{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		Questions:   make([]QuestionDTO, 0, len(r.Questions)),
	}
	for i := range r.Questions {
		q := &r.Questions[i]
		points := q.Points
		if points <= 0 {
			points = 1
		}
		dto.Questions = append(dto.Questions, QuestionDTO{
			QuestionIndex: i,
			Type:          q.Type,
			Question:      q.Question,
			Options:       NormalizeOptions(q.Options),
			Points:        points,
		})
	}
	return dto, nil
}

// ReviewerListItemDTO 卷列表项（不含题目）
type ReviewerListItemDTO struct {
	ID            uint64 `json:"id"`
	Title         string `json:"title"`
	Description   string `json:"description,omitempty"`
	QuestionCount int64  `json:"questionCount"`
}

// ListReviewers 卷列表（选卷页用），按创建时间倒序。
func (s *GradingService) ListReviewers(limit int) ([]ReviewerListItemDTO, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var rows []models.Reviewer
	if err := s.DB.Order("created_at DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return []ReviewerListItemDTO{}, nil
	}

	// 题数一次分组统计，避免逐卷 COUNT
	ids := make([]uint64, 0, len(rows))
	for i := range rows {
		ids = append(ids, rows[i].ID)
	}
	type questionCountRow struct {
		ReviewerID uint64
		Count      int64
	}
	var countRows []questionCountRow
	if err := s.DB.Model(&models.ReviewerQuestion{}).
		Select("reviewer_id, COUNT(*) AS count").
		Where("reviewer_id IN ?", ids).
		Group("reviewer_id").
		Scan(&countRows).Error; err != nil {
		return nil, err
	}
	counts := make(map[uint64]int64, len(countRows))
	for _, r := range countRows {
		counts[r.ReviewerID] = r.Count
	}

	out := make([]ReviewerListItemDTO, 0, len(rows))
	for i := range rows {
		out = append(out, ReviewerListItemDTO{
			ID:            rows[i].ID,
			Title:         rows[i].Title,
			Description:   rows[i].Description,
			QuestionCount: counts[rows[i].ID],
		})
	}
	return out, nil
}

// NormalizeOptions 把历史遗留的“任意形态”选项载荷归一化为有序字符串列表。
// 边界上的 tagged union：原始字符串 | JSON 数组 | JSON 对象 | 标量。
// 归一化与渲染完全隔离，渲染层只见 []string。
func NormalizeOptions(raw datatypes.JSON) []string {
	if len(raw) == 0 {
		return nil
	}

	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		// 不是合法 JSON：按原始文本处理
		return splitRawOptions(string(raw))
	}
	return normalizeValue(v)
}

func normalizeValue(v any) []string {
	switch x := v.(type) {
	case []any:
		out := make([]string, 0, len(x))
		for _, item := range x {
			if s := optionString(item); s != "" {
				out = append(out, s)
			}
		}
		return out
	case map[string]any:
		// 对象形态：按键排序保证顺序稳定（数字键按数值序）
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Slice(keys, func(i, j int) bool {
			ni, errI := strconv.Atoi(keys[i])
			nj, errJ := strconv.Atoi(keys[j])
			if errI == nil && errJ == nil {
				return ni < nj
			}
			return keys[i] < keys[j]
		})
		out := make([]string, 0, len(keys))
		for _, k := range keys {
			if s := optionString(x[k]); s != "" {
				out = append(out, s)
			}
		}
		return out
	case string:
		// JSON 字符串里可能又套了一层数组，也可能是换行/逗号分隔的原始文本
		trimmed := strings.TrimSpace(x)
		if strings.HasPrefix(trimmed, "[") || strings.HasPrefix(trimmed, "{") {
			var inner any
			if err := json.Unmarshal([]byte(trimmed), &inner); err == nil {
				return normalizeValue(inner)
			}
		}
		return splitRawOptions(trimmed)
	default:
		if s := optionString(x); s != "" {
			return []string{s}
		}
		return nil
	}
}

// optionString 单个选项值转字符串：对象取常见的文本字段，标量直接格式化。
func optionString(v any) string {
	switch x := v.(type) {
	case string:
		return strings.TrimSpace(x)
	case map[string]any:
		for _, key := range []string{"text", "label", "value", "option"} {
			if s, ok := x[key].(string); ok && strings.TrimSpace(s) != "" {
				return strings.TrimSpace(s)
			}
		}
		b, _ := json.Marshal(x)
		return string(b)
	case float64:
		if x == math.Trunc(x) {
			return strconv.FormatInt(int64(x), 10)
		}
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	case nil:
		return ""
	default:
		return strings.TrimSpace(fmt.Sprint(x))
	}
}

// splitRawOptions 原始文本形态：优先按换行拆，其次按竖线，都没有就是单个选项。
func splitRawOptions(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	sep := "\n"
	if !strings.Contains(s, "\n") && strings.Contains(s, "|") {
		sep = "|"
	}
	parts := strings.Split(s, sep)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
