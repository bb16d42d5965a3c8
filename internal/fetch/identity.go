package fetch

// ClientIdentity 一个客户端身份 (User-Agent及关联头部)
// 403时按顺序轮换, 第一个成功的身份生效
type ClientIdentity struct {
	// Name 身份名称 (日志用)
	Name string

	// UserAgent User-Agent字符串
	UserAgent string

	// Minimal 最小头部模式: 仅发送User-Agent, 不附加浏览器头部
	Minimal bool
}

// DefaultUserAgent 默认User-Agent
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
	"AppleWebKit/537.36 (KHTML, like Gecko) " +
	"Chrome/120.0.0.0 Safari/537.36"

// DefaultIdentities 默认身份列表, 按尝试顺序排列
// 第一个为常规浏览器身份, 其余为403时的备用身份
var DefaultIdentities = []ClientIdentity{
	{Name: "chrome", UserAgent: DefaultUserAgent},
	{Name: "googlebot", UserAgent: "Googlebot/2.1 (+http://www.google.com/bot.html)"},
	{Name: "bingbot", UserAgent: "Mozilla/5.0 (compatible; Bingbot/2.0; +http://www.bing.com/bingbot.htm)"},
	{Name: "safari", UserAgent: "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36"},
	{Name: "curl", UserAgent: "curl/7.68.0", Minimal: true},
}

// RotationState 身份轮换状态机的状态
// 状态转移: Idle → Attempting → {Success | Attempting(下一身份) | Fatal403}
// Success和Fatal403为终止状态
type RotationState int

const (
	StateIdle       RotationState = iota // 未开始
	StateAttempting                      // 正在用当前身份尝试
	StateSuccess                         // 某个身份成功
	StateFatal403                        // 所有身份均被403拒绝
)

// IdentityRotator 身份轮换器
// 封装403重试的小状态机, 每次Fetch调用创建一个实例
type IdentityRotator struct {
	identities []ClientIdentity
	index      int
	state      RotationState
}

// NewIdentityRotator 创建轮换器, 不传身份时使用默认列表
func NewIdentityRotator(identities ...ClientIdentity) *IdentityRotator {
	if len(identities) == 0 {
		identities = DefaultIdentities
	}
	return &IdentityRotator{
		identities: identities,
		state:      StateIdle,
	}
}

// Begin 进入Attempting状态, 从第一个身份开始
func (r *IdentityRotator) Begin() ClientIdentity {
	r.index = 0
	r.state = StateAttempting
	return r.identities[0]
}

// Current 当前身份
func (r *IdentityRotator) Current() ClientIdentity {
	return r.identities[r.index]
}

// Advance 切换到下一个身份
// 身份耗尽时进入Fatal403终止状态并返回false
func (r *IdentityRotator) Advance() (ClientIdentity, bool) {
	if r.state != StateAttempting {
		return ClientIdentity{}, false
	}
	r.index++
	if r.index >= len(r.identities) {
		r.state = StateFatal403
		return ClientIdentity{}, false
	}
	return r.identities[r.index], true
}

// MarkSuccess 标记当前身份成功, 进入终止状态
func (r *IdentityRotator) MarkSuccess() {
	r.state = StateSuccess
}

// State 当前状态
func (r *IdentityRotator) State() RotationState {
	return r.state
}

// Attempts 已尝试的身份数量
func (r *IdentityRotator) Attempts() int {
	if r.state == StateIdle {
		return 0
	}
	n := r.index + 1
	if n > len(r.identities) {
		n = len(r.identities)
	}
	return n
}
