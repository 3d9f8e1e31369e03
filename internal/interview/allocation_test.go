package interview

import "testing"

func TestAllocateQuota(t *testing.T) {
	tests := []struct {
		name  string
		roles []string
		want  map[string]int
	}{
		{
			name:  "single role takes everything",
			roles: []string{"Backend Engineer"},
			want:  map[string]int{"Backend Engineer": 10},
		},
		{
			name:  "two roles split evenly",
			roles: []string{"Backend Engineer", "Data Scientist"},
			want:  map[string]int{"Backend Engineer": 5, "Data Scientist": 5},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := allocateQuota(tt.roles)

			total := 0
			for role, n := range got {
				total += n
				if n != tt.want[role] {
					t.Errorf("quota[%q] = %d, want %d", role, n, tt.want[role])
				}
			}
			if total != TotalQuestions {
				t.Errorf("quota sum = %d, want %d", total, TotalQuestions)
			}
		})
	}
}
