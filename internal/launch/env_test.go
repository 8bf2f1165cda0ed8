package launch

import "testing"

func TestBuildEnvStripsAndSetsJavaHome(t *testing.T) {
	base := []string{"PATH=/bin", "PRELAUNCH_RESOURCES=/res", "JAVA_HOME=/old"}

	env := BuildEnv(base, []string{"PRELAUNCH_RESOURCES"}, "/opt/jre")

	if _, ok := GetEnv(env, "PRELAUNCH_RESOURCES"); ok {
		t.Fatalf("expected PRELAUNCH_RESOURCES to be stripped, got %v", env)
	}
	if value, ok := GetEnv(env, EnvJavaHome); !ok || value != "/opt/jre" {
		t.Fatalf("expected JAVA_HOME=/opt/jre, got %v", value)
	}
	if value, ok := GetEnv(env, "PATH"); !ok || value != "/bin" {
		t.Fatalf("expected PATH preserved, got %v", value)
	}
	if base[2] != "JAVA_HOME=/old" {
		t.Fatalf("expected base slice untouched, got %v", base)
	}
}

func TestBuildEnvWithoutJavaHome(t *testing.T) {
	env := BuildEnv([]string{"JAVA_HOME=/keep"}, nil, "")
	if value, ok := GetEnv(env, EnvJavaHome); !ok || value != "/keep" {
		t.Fatalf("expected JAVA_HOME to remain, got %v", value)
	}
}

func TestSetEnvUpdatesExisting(t *testing.T) {
	env := []string{"KEY=old"}
	env = SetEnv(env, "KEY", "new")
	if value, ok := GetEnv(env, "KEY"); !ok || value != "new" {
		t.Fatalf("expected KEY=new, got %v", value)
	}
}

func TestGetEnvMissing(t *testing.T) {
	env := []string{"KEY=value", "NOVAL"}
	if _, ok := GetEnv(env, "MISSING"); ok {
		t.Fatal("expected missing key")
	}
	if _, ok := GetEnv(env, "NOVAL"); ok {
		t.Fatal("expected entry without '=' to be ignored")
	}
}

func TestUnsetEnvEmptyKey(t *testing.T) {
	env := []string{"A=1"}
	if got := UnsetEnv(env, ""); len(got) != 1 {
		t.Fatalf("expected env unchanged, got %v", got)
	}
}
