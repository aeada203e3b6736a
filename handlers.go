package thinky_sdk

import (
	"encoding/json"
	"net/http"

	"github.com/thinky-app/thinky-sdk/response"
	"github.com/thinky-app/thinky-sdk/service"
)

/*
	HTTP处理 更建议自己写HTTP的处理，然后调用对应的service，而不是获得这里的闭包来调用。
	这组闭包给不用 gin 的宿主（比如云函数入口）提供一个现成的 net/http 形态。
*/

// HandleGradeQuiz 判分的 HTTP Handler（net/http 形态，云函数可直接挂载）
// @Summary 提交判分
// @Description 提交一套答案，返回总分、百分比和逐题对错（不回传正确答案）
// @Tags 测验
// @Accept json
// @Produce json
// @Param req body service.GradeRequest true "测验ID与答案"
// @Success 200 {object} response.Response{data=service.GradeResult} "判分结果"
// @Failure 400 {object} response.Response "参数错误"
// @Failure 500 {object} response.Response "服务器错误"
// @Router /reviewer/grade [post]
func (c *ThinkyEngine) HandleGradeQuiz() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			response.Error(response.CodeParamError, "method not allowed").WriteJSONWithStatus(w, http.StatusMethodNotAllowed)
			return
		}

		var req service.GradeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(response.CodeParamError, err.Error()).WriteJSON(w)
			return
		}

		result, err := c.GradingService.Grade(req)
		if err != nil {
			response.Error(response.CodeInternalError, err.Error()).WriteJSON(w)
			return
		}

		response.Success(result).WriteJSON(w)
	}
}

// HandleOnlineCount 在线人数的 HTTP Handler（net/http 形态）
// @Summary 在线人数
// @Description 返回最近 60 秒内有心跳的设备数
// @Tags 在线状态
// @Produce json
// @Success 200 {object} response.Response "{\"count\": 7}"
// @Failure 500 {object} response.Response "服务器错误"
// @Router /presence/online-count [get]
func (c *ThinkyEngine) HandleOnlineCount() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		count, err := c.PresenceService.OnlineCount(service.WindowOnlineBadge)
		if err != nil {
			response.Error(response.CodeInternalError, err.Error()).WriteJSON(w)
			return
		}

		response.Success(map[string]interface{}{
			"count": count,
		}).WriteJSON(w)
	}
}
