package quiz

import (
	"fmt"
	"time"
)

// QuestionTimer 可选的单题软计时，到时只跳到下一题
const QuestionTimer = 30 * time.Second

// ElapsedSeconds 向下取整到秒，时钟回拨时为 0
func ElapsedSeconds(start, now time.Time) int {
	d := now.Sub(start)
	if d < 0 {
		return 0
	}
	return int(d / time.Second)
}

// FormatElapsed 格式化为 MM:SS，分钟数可超过 59
func FormatElapsed(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

// Remaining 倒计时剩余秒数，不强制交卷
func Remaining(durationMinutes int, start, now time.Time) int {
	left := durationMinutes*60 - ElapsedSeconds(start, now)
	if left < 0 {
		return 0
	}
	return left
}

func DurationText(minutes int) string {
	return fmt.Sprintf("%d phút", minutes)
}
