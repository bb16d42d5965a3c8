package fetch

import "testing"

func TestIdentityRotator_StateMachine(t *testing.T) {
	identities := testIdentities()
	r := NewIdentityRotator(identities...)

	if r.State() != StateIdle {
		t.Fatalf("初始状态 = %v, want StateIdle", r.State())
	}
	if r.Attempts() != 0 {
		t.Errorf("未开始时Attempts = %d, want 0", r.Attempts())
	}

	first := r.Begin()
	if first.Name != "primary" {
		t.Errorf("Begin() = %s, 应从第一个身份开始", first.Name)
	}
	if r.State() != StateAttempting {
		t.Errorf("Begin后状态 = %v, want StateAttempting", r.State())
	}

	second, ok := r.Advance()
	if !ok || second.Name != "backup" {
		t.Errorf("Advance() = (%s, %v), want (backup, true)", second.Name, ok)
	}

	third, ok := r.Advance()
	if !ok || third.Name != "last" {
		t.Errorf("Advance() = (%s, %v), want (last, true)", third.Name, ok)
	}

	// 身份耗尽
	_, ok = r.Advance()
	if ok {
		t.Error("身份耗尽后Advance应返回false")
	}
	if r.State() != StateFatal403 {
		t.Errorf("耗尽后状态 = %v, want StateFatal403", r.State())
	}
	if r.Attempts() != 3 {
		t.Errorf("Attempts = %d, want 3", r.Attempts())
	}

	// 终止状态不可再推进
	if _, ok := r.Advance(); ok {
		t.Error("终止状态下Advance应返回false")
	}
}

func TestIdentityRotator_MarkSuccess(t *testing.T) {
	r := NewIdentityRotator(testIdentities()...)
	r.Begin()
	r.MarkSuccess()

	if r.State() != StateSuccess {
		t.Errorf("状态 = %v, want StateSuccess", r.State())
	}
	if r.Attempts() != 1 {
		t.Errorf("Attempts = %d, want 1", r.Attempts())
	}
}

func TestDefaultIdentities_LastIsMinimal(t *testing.T) {
	last := DefaultIdentities[len(DefaultIdentities)-1]
	if !last.Minimal {
		t.Error("最后一个默认身份应为最小头部模式")
	}
	for _, identity := range DefaultIdentities[:len(DefaultIdentities)-1] {
		if identity.Minimal {
			t.Errorf("身份%s不应是最小头部模式", identity.Name)
		}
	}
}
