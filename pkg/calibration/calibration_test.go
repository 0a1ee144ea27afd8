package calibration

import "testing"

func TestApply(t *testing.T) {
	tests := []struct {
		name    string
		value   Value
		ok      bool
		nominal uint16
		want    uint16
	}{
		{
			name:    "absent value is identity",
			value:   140000,
			ok:      false,
			nominal: 7031,
			want:    7031,
		},
		{
			name:    "below band is identity",
			value:   97999,
			ok:      true,
			nominal: 7031,
			want:    7031,
		},
		{
			name:    "above band is identity",
			value:   158001,
			ok:      true,
			nominal: 7031,
			want:    7031,
		},
		{
			name:    "lower band edge applies",
			value:   98000,
			ok:      true,
			nominal: 1000,
			want:    765, // 98000*1000/128000, truncated
		},
		{
			name:    "upper band edge applies",
			value:   158000,
			ok:      true,
			nominal: 8789, // largest nominal in use, checks intermediate width
			want:    10848, // 158000*8789/128000 = 10848.9..., truncated
		},
		{
			name:    "slow clock scales down",
			value:   140000,
			ok:      true,
			nominal: 7031,
			want:    7690, // 140000*7031/128000 = 7690.4..., truncated
		},
		{
			name:    "nominal clock is identity",
			value:   128000,
			ok:      true,
			nominal: 3516,
			want:    3516,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Apply(tt.value, tt.ok, tt.nominal); got != tt.want {
				t.Errorf("Apply(%d, %v, %d) = %d, want %d", tt.value, tt.ok, tt.nominal, got, tt.want)
			}
		})
	}
}

func TestApplyTruncates(t *testing.T) {
	// Integer division must truncate, never round.
	for c := uint32(98000); c <= 158000; c += 7919 {
		for _, n := range []uint16{1, 110, 1758, 3516, 7031, 8789} {
			want := uint16(uint64(c) * uint64(n) / 128000)
			if got := Apply(Value(c), true, n); got != want {
				t.Fatalf("Apply(%d, true, %d) = %d, want %d", c, n, got, want)
			}
		}
	}
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name   string
		img    []byte
		want   Value
		wantOK bool
	}{
		{
			name:   "valid image",
			img:    []byte{0x00, 0x02, 0x22, 0xE0, 0xCD}, // 140000
			want:   140000,
			wantOK: true,
		},
		{
			name:   "marker missing",
			img:    []byte{0x00, 0x02, 0x22, 0xE0, 0x00},
			wantOK: false,
		},
		{
			name:   "erased field with valid marker",
			img:    []byte{0xFF, 0xFF, 0xFF, 0xFF, 0xCD},
			wantOK: false,
		},
		{
			name:   "fully erased storage",
			img:    []byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF},
			wantOK: false,
		},
		{
			name:   "short read",
			img:    []byte{0x00, 0x02, 0x22},
			wantOK: false,
		},
		{
			name:   "empty read",
			img:    nil,
			wantOK: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Decode(tt.img)
			if ok != tt.wantOK {
				t.Fatalf("Decode(%v) ok = %v, want %v", tt.img, ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("Decode(%v) = %d, want %d", tt.img, got, tt.want)
			}
		})
	}
}

func TestEncodeDecodeAgree(t *testing.T) {
	img, err := Encode(131072)
	if err != nil {
		t.Fatalf("Encode returned error: %v", err)
	}
	v, ok := Decode(img[:])
	if !ok {
		t.Fatal("Decode rejected image produced by Encode")
	}
	if v != 131072 {
		t.Fatalf("decoded %d, want 131072", v)
	}
}

func TestEncodeRejectsOutOfBand(t *testing.T) {
	if _, err := Encode(50000); err == nil {
		t.Error("Encode accepted 50000 Hz, want out-of-band error")
	}
	if _, err := Encode(200000); err == nil {
		t.Error("Encode accepted 200000 Hz, want out-of-band error")
	}
}
