// Command quizcli 终端版测验客户端：登录、做题、查看历史与回看、同步离线记录。
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"quiz_app_backend/pkg/quizclient"
)

const usage = `用法: quizcli [-profile 文件] [-server 地址] <命令> [参数]

命令:
  register  -name -email -password   注册并登录
  login     -email -password         登录
  logout                             退出登录
  quizzes                            列出测验
  take      <序号|ID>                开始测验
  history                            查看历史记录
  review    [-title -time] [Key]     回看一次作答
  sync                               重新提交离线记录
  settings  [-music -timer -avatar]  查看或修改设置
`

type cli struct {
	profile Profile
	client  *quizclient.Client
	store   *quizclient.LocalStore
	state   *quizclient.State
	router  *quizclient.Router
	lines   <-chan string
	out     io.Writer
}

func main() {
	profilePath := flag.String("profile", filepath.Join(defaultDir(), "profile.yaml"), "客户端配置文件")
	server := flag.String("server", "", "后端地址，覆盖配置文件")
	saveServer := flag.Bool("save", false, "把 -server 写回配置文件")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	p, err := loadProfile(*profilePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "读取配置失败: %v\n", err)
		os.Exit(1)
	}
	if *server != "" {
		p.Server = *server
		if *saveServer {
			if err := saveProfile(*profilePath, p); err != nil {
				fmt.Fprintf(os.Stderr, "保存配置失败: %v\n", err)
			}
		}
	}

	c, err := newCLI(p, os.Stdin, os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化失败: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := c.run(ctx, flag.Arg(0), flag.Args()[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}
}

func newCLI(p Profile, in io.Reader, out io.Writer) (*cli, error) {
	store, err := quizclient.OpenStore(p.Store)
	if err != nil {
		return nil, err
	}
	st, err := quizclient.NewState(store)
	if err != nil {
		return nil, err
	}

	client := quizclient.New(p.Server, &http.Client{Timeout: time.Duration(p.Timeout) * time.Second})
	if st.Authenticated() {
		client.Token = st.User.Token
	}

	return &cli{
		profile: p,
		client:  client,
		store:   store,
		state:   st,
		router:  quizclient.NewRouter(),
		lines:   readLines(in),
		out:     out,
	}, nil
}

// readLines 在后台读取输入，读到 EOF 时关闭通道
func readLines(in io.Reader) <-chan string {
	ch := make(chan string)
	go func() {
		defer close(ch)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			ch <- sc.Text()
		}
	}()
	return ch
}
