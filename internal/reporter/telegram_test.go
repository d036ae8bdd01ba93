package reporter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatFeedback(t *testing.T) {
	tests := []struct {
		name string
		in   Feedback
		want string
	}{
		{
			name: "anonymous",
			in:   Feedback{ID: 1, Message: "great site"},
			want: "📝 <b>New feedback #1</b>\n👤 anonymous\n\ngreat site",
		},
		{
			name: "escapes user input",
			in:   Feedback{ID: 2, UserName: "<b>eve</b>", Email: "eve@x.io", Message: "a < b"},
			want: "📝 <b>New feedback #2</b>\n👤 &lt;b&gt;eve&lt;/b&gt; &lt;eve@x.io&gt;\n\na &lt; b",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatFeedback(tt.in))
		})
	}
}
