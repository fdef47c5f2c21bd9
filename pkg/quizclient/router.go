package quizclient

import "strings"

type View string

const (
	ViewHome     View = "home"
	ViewQuizzes  View = "quizzes"
	ViewQuiz     View = "quiz"
	ViewHistory  View = "history"
	ViewReview   View = "review"
	ViewAdmin    View = "admin"
	ViewLogin    View = "login"
	ViewRegister View = "register"
)

var views = map[View]bool{
	ViewHome: true, ViewQuizzes: true, ViewQuiz: true, ViewHistory: true,
	ViewReview: true, ViewAdmin: true, ViewLogin: true, ViewRegister: true,
}

// protected 未登录时跳转登录页
var protected = map[View]bool{
	ViewQuizzes: true, ViewQuiz: true, ViewHistory: true, ViewReview: true, ViewAdmin: true,
}

// Route Param 为 quiz 的测验 ID 或 review 的记录 Key
type Route struct {
	View  View
	Param string
}

func (r Route) Hash() string {
	if r.Param == "" {
		return "#" + string(r.View)
	}
	return "#" + string(r.View) + "/" + r.Param
}

// ParseHash "#review/<id>" -> {review, <id>}，未知视图回到首页
func ParseHash(hash string) Route {
	hash = strings.TrimPrefix(strings.TrimSpace(hash), "#")
	hash = strings.TrimPrefix(hash, "/")
	name, param, _ := strings.Cut(hash, "/")
	v := View(strings.ToLower(name))
	if !views[v] {
		return Route{View: ViewHome}
	}
	return Route{View: v, Param: param}
}

// Resolve 按守卫返回实际进入的路由
func Resolve(st *State, target Route) Route {
	if !views[target.View] {
		return Route{View: ViewHome}
	}

	authed := st != nil && st.Authenticated()
	if protected[target.View] && !authed {
		return Route{View: ViewLogin}
	}

	switch target.View {
	case ViewLogin, ViewRegister:
		if authed {
			return Route{View: ViewHome}
		}
	case ViewAdmin:
		if !st.IsAdmin() {
			return Route{View: ViewHome}
		}
	case ViewQuiz:
		if st.Session == nil && target.Param == "" {
			return Route{View: ViewQuizzes}
		}
	case ViewReview:
		if target.Param == "" {
			return Route{View: ViewHistory}
		}
	}
	return target
}

// Router 记录当前视图与上一个视图
type Router struct {
	Current  Route
	Previous Route
}

func NewRouter() *Router {
	return &Router{Current: Route{View: ViewHome}}
}

func (r *Router) Navigate(st *State, target Route) Route {
	next := Resolve(st, target)
	if next != r.Current {
		r.Previous = r.Current
		r.Current = next
	}
	return next
}

func (r *Router) NavigateHash(st *State, hash string) Route {
	return r.Navigate(st, ParseHash(hash))
}
