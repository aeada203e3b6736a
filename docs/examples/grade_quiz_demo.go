//go:build ignore
// +build ignore

package main

import (
	"encoding/json"
	"fmt"
	"log"

	thinky "github.com/thinky-app/thinky-sdk"
	"github.com/thinky-app/thinky-sdk/service"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// Example: 演示服务端判分
//
// 判分完全在服务端做，正确答案不会出现在任何响应里。
// 选择题答案允许数字或数字字符串（"1" 和 1 判一样），
// 简答题非空即得参与分。

func main() {
	// 1. 连接数据库
	dsn := "user:password@tcp(127.0.0.1:3306)/thinky_db?charset=utf8mb4&parseTime=True&loc=Local"
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// 2. 创建 ThinkyEngine 实例
	engine := thinky.NewEngine(
		thinky.WithDB(db),
		thinky.WithTablePrefix("tk_"),
	)

	// 3. 提交一套答案
	result, err := engine.GradingService.Grade(service.GradeRequest{
		ReviewerID: 1,
		Answers: map[string]any{
			"1": 2,     // 选择题：选项下标
			"2": "0",   // 数字字符串同样有效
			"3": "光合作用把光能转化成化学能", // 简答题：非空即得参与分
		},
	})
	if err != nil {
		log.Fatalf("Grade failed: %v", err)
	}

	b, _ := json.MarshalIndent(result, "", "  ")
	fmt.Println(string(b))
}
