package utils

import "testing"

func TestValidateRequestMessage(t *testing.T) {
	tests := []struct {
		name    string
		message string
		wantErr bool
	}{
		{name: "正常留言", message: "晚上一起打排位吗", wantErr: false},
		{name: "刚好两个字符", message: "约吗", wantErr: false},
		{name: "两个字符带首尾空白", message: "  ok  ", wantErr: false},
		{name: "空字符串", message: "", wantErr: true},
		{name: "纯空白", message: "    ", wantErr: true},
		{name: "空白夹一个字符", message: " a ", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRequestMessage(tt.message)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateRequestMessage(%q) = %v, wantErr %v", tt.message, err, tt.wantErr)
			}
		})
	}
}
