package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"quiz_app_backend/internal/model"
	"quiz_app_backend/internal/quiz"
	"quiz_app_backend/pkg/quizclient"
)

var errNotAllowed = errors.New("command not available")

func (c *cli) run(ctx context.Context, name string, args []string) error {
	switch name {
	case "register":
		return c.register(ctx, args)
	case "login":
		return c.login(ctx, args)
	case "logout":
		if err := c.state.SignOut(c.client, c.store); err != nil {
			return err
		}
		fmt.Fprintln(c.out, "已退出登录")
		return nil
	case "quizzes":
		return c.quizzes(ctx)
	case "take":
		return c.take(ctx, args)
	case "history":
		return c.history(ctx)
	case "review":
		return c.review(ctx, args)
	case "sync":
		return c.sync(ctx)
	case "settings":
		return c.settings(ctx, args)
	default:
		return fmt.Errorf("unknown command %q", name)
	}
}

// enter 经过路由守卫进入视图，被重定向时提示用户
func (c *cli) enter(target quizclient.Route) error {
	got := c.router.Navigate(c.state, target)
	if got.View == target.View {
		return nil
	}
	switch got.View {
	case quizclient.ViewLogin:
		return fmt.Errorf("%w: 请先登录 (quizcli login)", errNotAllowed)
	case quizclient.ViewHome:
		return fmt.Errorf("%w: 当前账号无权访问 %s", errNotAllowed, target.View)
	default:
		return fmt.Errorf("%w: 跳转到 %s", errNotAllowed, got.View)
	}
}

func (c *cli) register(ctx context.Context, args []string) error {
	if err := c.enter(quizclient.Route{View: quizclient.ViewRegister}); err != nil {
		return err
	}
	fs := flag.NewFlagSet("register", flag.ContinueOnError)
	name := fs.String("name", "", "姓名")
	email := fs.String("email", "", "邮箱")
	password := fs.String("password", "", "密码（至少 6 位）")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *name == "" || *email == "" || *password == "" {
		return errors.New("name, email and password are required")
	}

	u, err := c.client.Register(ctx, *name, *email, *password)
	if err != nil {
		return err
	}
	if err := c.state.SignIn(c.client, c.store, u); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "注册成功，欢迎 %s\n", u.Name)
	return nil
}

func (c *cli) login(ctx context.Context, args []string) error {
	if err := c.enter(quizclient.Route{View: quizclient.ViewLogin}); err != nil {
		return err
	}
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	email := fs.String("email", "", "邮箱")
	password := fs.String("password", "", "密码")
	if err := fs.Parse(args); err != nil {
		return err
	}

	u, err := c.client.Login(ctx, *email, *password)
	if err != nil {
		return err
	}
	if err := c.state.SignIn(c.client, c.store, u); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "登录成功：%s (%s)\n", u.Name, u.Role)
	return nil
}

func (c *cli) quizzes(ctx context.Context) error {
	if err := c.enter(quizclient.Route{View: quizclient.ViewQuizzes}); err != nil {
		return err
	}
	c.state.LoadCatalog(ctx, c.client)

	w := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "#\tID\t标题\t科目\t时长\t题数")
	for i, q := range c.state.Catalog.Quizzes {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%d\n", i+1, q.ID, q.Title, q.Subject, quiz.DurationText(q.Duration), quiz.TargetCount(q))
	}
	return w.Flush()
}

func (c *cli) pickQuiz(arg string) (string, error) {
	if n, err := strconv.Atoi(arg); err == nil {
		if n < 1 || n > len(c.state.Catalog.Quizzes) {
			return "", fmt.Errorf("quiz #%d does not exist", n)
		}
		return c.state.Catalog.Quizzes[n-1].ID, nil
	}
	return arg, nil
}

// parseAnswer 接受 1-n 或 a-d，空行表示跳过
func parseAnswer(s string, n int) (int, bool, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return 0, false, nil
	}
	idx := -1
	if v, err := strconv.Atoi(s); err == nil {
		idx = v - 1
	} else if len(s) == 1 && s[0] >= 'a' && s[0] <= 'z' {
		idx = int(s[0] - 'a')
	}
	if idx < 0 || idx >= n {
		return 0, false, fmt.Errorf("answer %q out of range 1-%d", s, n)
	}
	return idx, true, nil
}

func (c *cli) take(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("usage: quizcli take <number|id>")
	}
	if err := c.enter(quizclient.Route{View: quizclient.ViewQuizzes}); err != nil {
		return err
	}
	c.state.LoadCatalog(ctx, c.client)

	id, err := c.pickQuiz(args[0])
	if err != nil {
		return err
	}
	if err := c.enter(quizclient.Route{View: quizclient.ViewQuiz, Param: id}); err != nil {
		return err
	}

	settings, err := c.store.Settings()
	if err != nil {
		return err
	}

	sess, err := c.state.StartQuiz(id, rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), rand.Uint64())), time.Now())
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "%s · %s · %d 题\n", sess.Quiz.Title, quiz.DurationText(sess.Quiz.Duration), len(sess.Questions))

	for i, q := range sess.Questions {
		left := sess.Remaining(time.Now())
		fmt.Fprintf(c.out, "\nCâu %d/%d  (剩余 %s)\n%s\n", i+1, len(sess.Questions), quiz.FormatElapsed(left), q.Text)
		for j, opt := range q.Options {
			fmt.Fprintf(c.out, "  %c. %s\n", 'A'+j, opt.Text)
		}

		if !c.ask(ctx, sess, i, len(q.Options), settings.QuestionTimer) {
			break
		}
	}

	res, err := c.state.SubmitSession(ctx, c.client, c.store, time.Now())
	if err != nil {
		return err
	}
	a := res.Attempt
	fmt.Fprintf(c.out, "\n得分 %d/%d（答对 %d/%d），用时 %s\n", a.Score, a.Total, a.RawScore, a.RawTotal, a.TimeText)
	if res.Offline {
		fmt.Fprintln(c.out, "服务器不可用，记录已离线保存，稍后运行 quizcli sync")
	}
	return c.enter(quizclient.Route{View: quizclient.ViewHistory})
}

// ask 读取一题的作答；返回 false 表示输入结束或被取消，应直接交卷
func (c *cli) ask(ctx context.Context, sess *quiz.Session, pos, n int, timed bool) bool {
	var timeout <-chan time.Time
	if timed {
		t := time.NewTimer(quiz.QuestionTimer)
		defer t.Stop()
		timeout = t.C
	}

	for {
		fmt.Fprint(c.out, "> ")
		select {
		case <-ctx.Done():
			return false
		case <-timeout:
			fmt.Fprintln(c.out, "\n时间到，进入下一题")
			return true
		case line, ok := <-c.lines:
			if !ok {
				return false
			}
			idx, answered, err := parseAnswer(line, n)
			if err != nil {
				fmt.Fprintln(c.out, err)
				continue
			}
			if answered {
				_ = sess.Select(pos, idx)
			}
			return true
		}
	}
}

func (c *cli) history(ctx context.Context) error {
	if err := c.enter(quizclient.Route{View: quizclient.ViewHistory}); err != nil {
		return err
	}
	c.state.RefreshHistory(ctx, c.client, c.store)

	if len(c.state.History) == 0 {
		fmt.Fprintln(c.out, "暂无记录")
		return nil
	}
	w := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "Key\t测验\t得分\t用时\t时间\t")
	for _, e := range c.state.History {
		mark := ""
		if e.Offline {
			mark = "离线"
		}
		fmt.Fprintf(w, "%s\t%s\t%d/%d\t%s\t%s\t%s\n",
			e.Key, e.Attempt.QuizTitle, e.Attempt.Score, e.Attempt.Total,
			e.Attempt.TimeText, e.Attempt.CreatedAt.Local().Format("15:04 • 02/01/2006"), mark)
	}
	return w.Flush()
}

func (c *cli) review(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("review", flag.ContinueOnError)
	title := fs.String("title", "", "测验标题（Key 失效时使用）")
	timeText := fs.String("time", "", "用时文本（Key 失效时使用）")
	if err := fs.Parse(args); err != nil {
		return err
	}
	param := fs.Arg(0)
	if param == "" {
		param = *title
	}
	if err := c.enter(quizclient.Route{View: quizclient.ViewReview, Param: param}); err != nil {
		return err
	}
	c.state.RefreshHistory(ctx, c.client, c.store)

	e, err := c.state.Review(quizclient.ReviewQuery{Key: fs.Arg(0), QuizTitle: *title, TimeText: *timeText})
	if err != nil {
		return err
	}
	printReview(c, e.Attempt)
	return nil
}

func printReview(c *cli, a model.Attempt) {
	fmt.Fprintf(c.out, "%s  %d/%d  %s\n", a.QuizTitle, a.Score, a.Total, a.TimeText)
	for i, q := range a.Questions {
		var selected *int
		if i < len(a.Answers) {
			selected = a.Answers[i].SelectedIndex
		}
		fmt.Fprintf(c.out, "\nCâu %d: %s\n", i+1, q.Text)
		for j, opt := range q.Options {
			mark := " "
			switch {
			case opt.IsCorrect:
				mark = "✓"
			case selected != nil && *selected == j:
				mark = "✗"
			}
			chosen := ""
			if selected != nil && *selected == j {
				chosen = "  ← 你的选择"
			}
			fmt.Fprintf(c.out, " %s %c. %s%s\n", mark, 'A'+j, opt.Text, chosen)
		}
		if selected == nil {
			fmt.Fprintln(c.out, "   （未作答）")
		}
	}
}

func (c *cli) sync(ctx context.Context) error {
	if err := c.enter(quizclient.Route{View: quizclient.ViewHistory}); err != nil {
		return err
	}
	res, err := quizclient.SyncOffline(ctx, c.client, c.store, c.state.User.Email)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "已同步 %d 条，队列剩余 %d 条\n", res.Synced, res.Remaining)
	for _, e := range res.Errors {
		fmt.Fprintf(c.out, "  失败: %v\n", e)
	}
	return nil
}

func parseSwitch(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "on", "true", "1", "yes":
		return true, nil
	case "off", "false", "0", "no":
		return false, nil
	}
	return false, fmt.Errorf("expected on/off, got %q", s)
}

func (c *cli) settings(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("settings", flag.ContinueOnError)
	music := fs.String("music", "", "背景音乐 on/off")
	timer := fs.String("timer", "", "每题 30 秒计时 on/off")
	avatar := fs.String("avatar", "", "头像（emoji 或 data URL）")
	if err := fs.Parse(args); err != nil {
		return err
	}

	st, err := c.store.Settings()
	if err != nil {
		return err
	}
	if *music != "" {
		if st.Music, err = parseSwitch(*music); err != nil {
			return err
		}
	}
	if *timer != "" {
		if st.QuestionTimer, err = parseSwitch(*timer); err != nil {
			return err
		}
	}
	if *avatar != "" {
		st.Avatar = *avatar
		if c.state.Authenticated() {
			saved, err := c.client.UpdateAvatar(ctx, *avatar)
			if err != nil {
				return err
			}
			c.state.User.Avatar = saved
			if err := c.store.Set(quizclient.KeyAuthUser, c.state.User); err != nil {
				return err
			}
		}
	}
	if err := c.store.Set(quizclient.KeySettings, st); err != nil {
		return err
	}

	fmt.Fprintf(c.out, "music=%t timer=%t avatar=%s\n", st.Music, st.QuestionTimer, st.Avatar)
	return nil
}
