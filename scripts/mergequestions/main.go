// 把生成的题目合并进基础题库：新题追加，已有题补全空字段
//
// 用法: go run ./scripts/mergequestions -base fixtures/questions.json -generated fixtures/questions_with_quiz.json

package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"quiz_app_backend/internal/fixture"
)

func main() {
	basePath := flag.String("base", "fixtures/questions.json", "基础题库文件")
	generatedPath := flag.String("generated", "fixtures/questions_with_quiz.json", "生成的题目文件")
	outPath := flag.String("out", "", "输出文件，默认覆盖 -base")
	flag.Parse()

	if *outPath == "" {
		*outPath = *basePath
	}

	var base, generated []map[string]any
	if err := fixture.ReadFile(*basePath, &base); err != nil {
		log.Printf("读取基础题库失败: %v", err)
		os.Exit(3)
	}
	if err := fixture.ReadFile(*generatedPath, &generated); err != nil {
		log.Printf("读取生成题目失败: %v", err)
		os.Exit(4)
	}

	merged, summary := fixture.MergeQuestions(base, generated)
	if err := fixture.WriteFile(*outPath, merged); err != nil {
		log.Printf("写入失败: %v", err)
		os.Exit(5)
	}

	fmt.Println(summary)
}
