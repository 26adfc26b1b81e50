package usecase

import "testing"

func TestConversationalReplyVariants(t *testing.T) {
	cases := []struct {
		question string
		want     string
	}{
		{"hello", greetingReply},
		{"Hey!", greetingReply},
		{"what can you do", helpReply},
		{"can you help me", helpReply},
		{"thank you so much", thanksReply},
		{"bye", defaultReply},
	}
	for _, tc := range cases {
		if got := conversationalReply(tc.question); got != tc.want {
			t.Errorf("conversationalReply(%q) picked the wrong variant", tc.question)
		}
	}
}
