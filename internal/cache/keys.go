package cache

const (
	KeyPrefix    = "quiz:catalog:"
	KeyQuizzes   = KeyPrefix + "quizzes"
	KeyQuestions = KeyPrefix + "questions"
	KeySubjects  = KeyPrefix + "subjects"
	CatalogGlob  = KeyPrefix + "*"
)

func QuestionsBySubjectKey(subject string) string {
	return KeyPrefix + "questions:subject:" + subject
}
