// Package thinky_sdk 提供匿名社区与测验服务的核心能力
// @title Thinky Community API
// @version 1.0
// @description 匿名社区与测验服务的 RESTful API 文档，包含设备、社区留言、私信、在线状态、测验与管理端模块
// @description
// @description ## 业务状态码说明
// @description | Code | 说明 |
// @description |------|------|
// @description | 0 | 成功 |
// @description | 10001 | 参数错误 |
// @description | 10002 | 设备不存在 |
// @description | 10003 | 密码错误（登录失败） |
// @description | 10004 | Token 无效 |
// @description | 10005 | 权限不足 |
// @description | 20001 | 命中屏蔽词（警告，附剩余次数） |
// @description | 20002 | 设备已封禁 |
// @description | 20003 | 发送过于频繁 |
// @description | 20004 | 对方不在线 |
// @description | 99999 | 内部错误 |
// @description
// @description ## HTTP 状态码说明
// @description - **200**: 业务请求成功（根据 response.code 判断业务状态）
// @description - **400**: 参数错误（缺少设备ID等）
// @description - **401**: 认证失败（管理端 Token 无效）
// @description - **500**: 服务器内部错误
// @description
// @description ## 响应格式
// @description 所有接口统一返回格式：
// @description ```json
// @description {
// @description   "code": 0,
// @description   "msg": "success",
// @description   "data": {}
// @description }
// @description ```
//
// @termsOfService https://github.com/thinky-app/thinky-sdk
//
// @contact.name API Support
// @contact.url https://github.com/thinky-app/thinky-sdk/issues
// @contact.email support@example.com
//
// @license.name MIT
// @license.url https://opensource.org/licenses/MIT
//
// @host localhost:6789
// @BasePath /api/v1
// @schemes http https
//
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description 格式：Bearer <token>
//
// @securityDefinitions.apikey QueryToken
// @in query
// @name token
// @description 用于 WebSocket 等无法传 header 的场景
package thinky_sdk
