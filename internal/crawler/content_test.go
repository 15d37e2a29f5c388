package crawler

import (
	"strings"
	"testing"
)

func TestStripMarkupBasic(t *testing.T) {
	html := `<div><p>첫 번째 문단</p><p>두 번째 문단</p></div>`
	got := StripMarkup(html)
	if !strings.Contains(got, "첫 번째 문단") || !strings.Contains(got, "두 번째 문단") {
		t.Errorf("expected both paragraphs, got %q", got)
	}
	if strings.Contains(got, "<p>") {
		t.Errorf("markup survived stripping: %q", got)
	}
}

func TestStripMarkupDropsScripts(t *testing.T) {
	html := `<div><script>var x = 1;</script><p>본문</p><style>.a{color:red}</style></div>`
	got := StripMarkup(html)
	if strings.Contains(got, "var x") || strings.Contains(got, "color:red") {
		t.Errorf("script/style content survived: %q", got)
	}
	if !strings.Contains(got, "본문") {
		t.Errorf("real content lost: %q", got)
	}
}

func TestStripMarkupLineBreaks(t *testing.T) {
	html := `첫 줄<br>둘째 줄`
	got := StripMarkup(html)
	if !strings.Contains(got, "\n") {
		t.Errorf("br should produce a line break, got %q", got)
	}
}

func TestCleanContentRealPost(t *testing.T) {
	html := `<div>
		<p>오늘 마트에서 할인 행사를 하길래 들러봤는데 생각보다 품목이 많아서 한참 구경했습니다.</p>
		<p>특히 과일 코너가 거의 반값이라 몇 가지 담아왔어요. 다들 서두르세요.</p>
	</div>`
	got := CleanContent(html)
	if got == "" {
		t.Fatal("genuine post body was rejected")
	}
	if !strings.Contains(got, "할인 행사") {
		t.Errorf("content lost: %q", got)
	}
}

func TestCleanContentRejectsChrome(t *testing.T) {
	html := `<div>
		<span>로그인</span>
		<span>회원가입</span>
		<span>목록</span>
		<span>공유</span>
		<span>신고</span>
	</div>`
	if got := CleanContent(html); got != "" {
		t.Errorf("chrome-dominated content should be rejected, got %q", got)
	}
}

func TestCleanContentRejectsEmpty(t *testing.T) {
	for _, html := range []string{"", "<div></div>", "<p>  </p>", "<p>a</p>"} {
		if got := CleanContent(html); got != "" {
			t.Errorf("CleanContent(%q) = %q, want empty", html, got)
		}
	}
}

func TestCleanContentKeepsLongProseDespiteChrome(t *testing.T) {
	html := `<div>
		<span>댓글</span>
		<span>목록</span>
		<p>이 글은 네비게이션 요소 사이에 끼어 있지만 분명히 진짜 본문이며 충분히 길게 작성된 문장입니다.</p>
	</div>`
	got := CleanContent(html)
	if got == "" {
		t.Fatal("long prose should survive surrounding chrome")
	}
	if strings.Contains(got, "목록") {
		t.Errorf("chrome lines should be filtered out, got %q", got)
	}
}

func TestIsUINoise(t *testing.T) {
	cases := []struct {
		line string
		want bool
	}{
		{"로그인", true},
		{"댓글 12", true},
		{"이전글 | 다음글", true},
		{"오늘 저녁 뭐 먹을지 고민입니다", false},
		{"댓글로 시작하지만 이 줄은 충분히 길어서 실제 본문 문장으로 취급되어야 합니다", false},
	}
	for _, tc := range cases {
		if got := isUINoise(tc.line); got != tc.want {
			t.Errorf("isUINoise(%q) = %v, want %v", tc.line, got, tc.want)
		}
	}
}
