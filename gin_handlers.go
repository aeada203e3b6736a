package thinky_sdk

/* @title           Thinky Community API
@version         1.0
@description     Thinky Community API documentation
@host            localhost:6789
@BasePath        /api/v1
@securityDefinitions.apikey BearerAuth
@in header
@name Authorization
*/

/* This file is now split into:
- handler_device.go
- handler_community.go
- handler_direct.go
- handler_presence.go
- handler_quiz.go
- handler_admin.go
*/
