package thinky_sdk

import (
	"net/http"
	"strconv"

	"github.com/thinky-app/thinky-sdk/response"
	"github.com/thinky-app/thinky-sdk/service"

	"github.com/gin-gonic/gin"
)

// -------------------- 测验（Quiz）相关接口 --------------------

// GinHandleListReviewers 测验列表
// @Summary 测验列表
// @Description 返回可选的测验列表（标题与题数，不含题目内容）
// @Tags 测验
// @Accept json
// @Produce json
// @Param limit query int false "条数上限，默认 50"
// @Success 200 {object} response.Response{data=[]service.ReviewerListItemDTO} "测验列表"
// @Failure 500 {object} response.Response "服务器错误"
// @Router /reviewer/list [get]
func (c *ThinkyEngine) GinHandleListReviewers(ctx *gin.Context) {
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "50"))

	list, err := c.GradingService.ListReviewers(limit)
	if err != nil {
		ctx.JSON(http.StatusOK, response.Error(response.CodeInternalError, err.Error()))
		return
	}
	ctx.JSON(http.StatusOK, response.Success(list))
}

// GinHandleGetReviewer 获取测验
// @Summary 获取测验
// @Description 返回一套测验的题目与选项。正确答案永远不出现在响应里，判分只在服务端做
// @Tags 测验
// @Accept json
// @Produce json
// @Param id path uint64 true "测验ID"
// @Success 200 {object} response.Response{data=service.ReviewerDTO} "测验内容"
// @Failure 400 {object} response.Response "参数错误"
// @Failure 500 {object} response.Response "服务器错误"
// @Router /reviewer/{id} [get]
func (c *ThinkyEngine) GinHandleGetReviewer(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil || id == 0 {
		ctx.JSON(http.StatusBadRequest, response.Error(response.CodeParamError, "invalid reviewer id"))
		return
	}

	dto, err := c.GradingService.GetReviewer(id)
	if err != nil {
		ctx.JSON(http.StatusOK, response.Error(response.CodeInternalError, err.Error()))
		return
	}
	ctx.JSON(http.StatusOK, response.Success(dto))
}

// GinHandleGradeQuiz 提交判分
// @Summary 提交判分
// @Description 提交一套答案，返回总分、百分比和逐题对错（不回传正确答案）
// @Tags 测验
// @Accept json
// @Produce json
// @Param body body service.GradeRequest true "测验ID与答案"
// @Success 200 {object} response.Response{data=service.GradeResult} "判分结果"
// @Failure 400 {object} response.Response "参数错误"
// @Failure 500 {object} response.Response "服务器错误"
// @Router /reviewer/grade [post]
func (c *ThinkyEngine) GinHandleGradeQuiz(ctx *gin.Context) {
	var req service.GradeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, response.Error(response.CodeParamError, "invalid grade payload"))
		return
	}

	result, err := c.GradingService.Grade(req)
	if err != nil {
		ctx.JSON(http.StatusOK, response.Error(response.CodeInternalError, err.Error()))
		return
	}
	ctx.JSON(http.StatusOK, response.Success(result))
}
