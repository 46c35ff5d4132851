package cpufeature

import "testing"

func TestKnownFeatureNamesResolve(t *testing.T) {
	for name := range featureNames {
		if _, known := Lookup(name, Host{}); !known {
			t.Errorf("Lookup(%q) reported known=false, want known=true", name)
		}
	}
}

func TestFeatureLookupIsCaseInsensitive(t *testing.T) {
	_, knownLower := Lookup("sse2", Host{})
	_, knownUpper := Lookup("SSE2", Host{})
	if !knownLower || !knownUpper {
		t.Errorf("expected both cases to be known")
	}
}

func TestSyntheticKeysUseHost(t *testing.T) {
	host := Host{Wine: true, Win64: true, WindowsVer: 10, HostVer: 1}

	if supported, known := Lookup("wine", host); !known || !supported {
		t.Errorf("wine: got supported=%v known=%v, want true/true", supported, known)
	}
	if supported, known := Lookup("win64", host); !known || !supported {
		t.Errorf("win64: got supported=%v known=%v, want true/true", supported, known)
	}
	if supported, known := Lookup("winver", host); !known || !supported {
		t.Errorf("winver: got supported=%v known=%v, want true/true", supported, known)
	}
	if supported, known := Lookup("winver", Host{}); !known || supported {
		t.Errorf("winver with zero host: got supported=%v known=%v, want false/true", supported, known)
	}
}

func TestUnknownFeatureNameIsUnknown(t *testing.T) {
	if _, known := Lookup("not-a-real-feature", Host{}); known {
		t.Errorf("expected unrecognized feature name to report known=false")
	}
}
