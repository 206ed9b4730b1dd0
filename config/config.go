// Package config provides configuration loading and access for the avatar controller.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all avatar controller configuration parameters.
type Config struct {
	Locomotion LocomotionConfig `yaml:"locomotion"`
	Animation  AnimationConfig  `yaml:"animation"`
	Camera     CameraConfig     `yaml:"camera"`
	Input      InputConfig      `yaml:"input"`
	Physics    PhysicsConfig    `yaml:"physics"`
	Scene      SceneConfig      `yaml:"scene"`
	Logging    LoggingConfig    `yaml:"logging"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`
	Scenario   []ScenarioEvent  `yaml:"scenario"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// LocomotionConfig holds the authoritative movement tuning.
// Tilt values are literal design constants, not derived from a physical model.
type LocomotionConfig struct {
	RotateSpeed            float64    `yaml:"rotate_speed"`             // degrees per second while a rotate key is held
	MouseRotateSensitivity float64    `yaml:"mouse_rotate_sensitivity"` // degrees per pointer unit
	MoveForce              float64    `yaml:"move_force"`               // impulse per physics step
	FlySpeedFactor         float64    `yaml:"fly_speed_factor"`         // units per physics step while flying
	DampingForce           float64    `yaml:"damping_force"`            // impulse per unit of horizontal velocity
	JumpImpulse            float64    `yaml:"jump_impulse"`
	FlyExitImpulse         float64    `yaml:"fly_exit_impulse"` // push applied when flight ends
	AvatarMass             float64    `yaml:"avatar_mass"`
	BodySize               [3]float64 `yaml:"body_size"`
	TiltLimit              float64    `yaml:"tilt_limit"` // degrees
	TiltStep               float64    `yaml:"tilt_step"`  // degrees per step
	TiltLift               float64    `yaml:"tilt_lift"`  // z per degree of tilt per step
}

// AnimationConfig holds clip names and playback tuning.
type AnimationConfig struct {
	WalkAnimSpeed float64            `yaml:"walk_anim_speed"` // walk clip speed per unit of horizontal velocity
	FadeTime      float64            `yaml:"fade_time"`       // blend in/out seconds
	Clips         map[string]string  `yaml:"clips"`           // canonical name -> engine clip name
	Speeds        map[string]float64 `yaml:"speeds"`          // fixed playback speed overrides
}

// CameraConfig holds third-person camera parameters.
type CameraConfig struct {
	Name             string  `yaml:"name"`
	Distance         float64 `yaml:"distance"`
	Height           float64 `yaml:"height"`
	MinDistance      float64 `yaml:"min_distance"`
	MaxDistance      float64 `yaml:"max_distance"`
	Pitch            float64 `yaml:"pitch"`      // fixed roll-axis rotation in degrees
	YawOffset        float64 `yaml:"yaw_offset"` // subtracted from avatar yaw
	LookSensitivity  float64 `yaml:"look_sensitivity"`
	LargeScroll      float64 `yaml:"large_scroll"`       // scroll magnitude above which zoom moves by 2
	KeyboardZoomStep float64 `yaml:"keyboard_zoom_step"` // scroll equivalent of one zoom key press
}

// InputConfig holds the binding table and gesture thresholds.
type InputConfig struct {
	Contexts      []ContextConfig `yaml:"contexts"`
	Bindings      []BindingConfig `yaml:"bindings"`
	PanThreshold  float64         `yaml:"pan_threshold"`  // accumulated vertical pan that toggles walking
	PinchDeadZone float64         `yaml:"pinch_dead_zone"` // scale change ignored below this
	PinchScale    float64         `yaml:"pinch_scale"`     // scroll units per unit of scale change
}

// ContextConfig declares an input context.
type ContextConfig struct {
	Name      string `yaml:"name"`
	Priority  int    `yaml:"priority"`
	Execution string `yaml:"execution"` // "remote" or "local"
}

// BindingConfig maps a key edge to a logical action string such as "Move(forward)".
type BindingConfig struct {
	Key     string `yaml:"key"`
	Trigger string `yaml:"trigger"` // "press" or "release"
	Action  string `yaml:"action"`
	Context string `yaml:"context"`
}

// PhysicsConfig holds reference host physics parameters.
type PhysicsConfig struct {
	DT         float64 `yaml:"dt"`
	Gravity    float64 `yaml:"gravity"`
	GroundZ    float64 `yaml:"ground_z"`
	SleepSpeed float64 `yaml:"sleep_speed"` // speed below which a grounded body starts to sleep
	SleepDelay float64 `yaml:"sleep_delay"` // seconds below SleepSpeed before sleeping
}

// SceneConfig holds reference host scene parameters.
type SceneConfig struct {
	AvatarName     string             `yaml:"avatar_name"`
	ServerHeadless bool               `yaml:"server_headless"`
	ClientHeadless bool               `yaml:"client_headless"`
	AvatarClips    map[string]float64 `yaml:"avatar_clips"`     // engine clip name -> length in seconds
	MeshLoadFrames int                `yaml:"mesh_load_frames"` // frames before the avatar mesh reports its clips
	SpawnHeight    float64            `yaml:"spawn_height"`
	FreeCamera     string             `yaml:"free_camera"` // scene default camera, active until a viewer attaches
}

// LoggingConfig holds log output settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "json" or "text"
}

// TelemetryConfig holds trace output settings.
type TelemetryConfig struct {
	TraceEvery int `yaml:"trace_every"` // record one trace row every N frames
}

// ScenarioEvent is one scripted input event for the headless runner.
type ScenarioEvent struct {
	Frame   int     `yaml:"frame"`
	Kind    string  `yaml:"kind"`          // "key", "pointer", "wheel", "pan", "pinch", "camera"
	Key     string  `yaml:"key,omitempty"` // key name, or camera name for "camera" events
	Pressed bool    `yaml:"pressed,omitempty"`
	State   string  `yaml:"state,omitempty"` // gesture state: "start", "update", "finish"
	X       float64 `yaml:"x,omitempty"`
	Y       float64 `yaml:"y,omitempty"`
	DX      float64 `yaml:"dx,omitempty"`
	DY      float64 `yaml:"dy,omitempty"`
	Scale   float64 `yaml:"scale,omitempty"`
	Last    float64 `yaml:"last,omitempty"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	DT32      float32            // Physics.DT as float32
	ClipNames map[string]string  // canonical name -> engine clip, missing entries filled with the canonical name
	Speeds32  map[string]float32 // Animation.Speeds as float32
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Default returns a fresh copy of the embedded defaults.
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults are invalid: %v", err))
	}
	return cfg
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.computeDerived()

	return cfg, nil
}

// validate rejects configurations the controller cannot run with.
func (c *Config) validate() error {
	if c.Physics.DT <= 0 {
		return fmt.Errorf("physics.dt must be positive, got %v", c.Physics.DT)
	}
	if c.Camera.MinDistance <= 0 || c.Camera.MaxDistance < c.Camera.MinDistance {
		return fmt.Errorf("camera distance bounds invalid: [%v, %v]", c.Camera.MinDistance, c.Camera.MaxDistance)
	}
	if c.Locomotion.AvatarMass <= 0 {
		return fmt.Errorf("locomotion.avatar_mass must be positive, got %v", c.Locomotion.AvatarMass)
	}
	if c.Scene.AvatarName == "" {
		return fmt.Errorf("scene.avatar_name must be set")
	}
	for i, ev := range c.Scenario {
		switch ev.Kind {
		case "key", "pointer", "wheel", "camera":
		case "pan", "pinch":
			if ev.State != "start" && ev.State != "update" && ev.State != "finish" {
				return fmt.Errorf("scenario[%d]: unknown gesture state %q", i, ev.State)
			}
		default:
			return fmt.Errorf("scenario[%d]: unknown kind %q", i, ev.Kind)
		}
	}
	for i, b := range c.Input.Bindings {
		if b.Trigger != "press" && b.Trigger != "release" {
			return fmt.Errorf("input.bindings[%d]: unknown trigger %q", i, b.Trigger)
		}
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.DT32 = float32(c.Physics.DT)

	c.Derived.ClipNames = make(map[string]string, len(canonicalNames))
	for _, name := range canonicalNames {
		clip, ok := c.Animation.Clips[name]
		if !ok {
			clip = name
		}
		c.Derived.ClipNames[name] = clip
	}

	c.Derived.Speeds32 = make(map[string]float32, len(c.Animation.Speeds))
	for name, speed := range c.Animation.Speeds {
		c.Derived.Speeds32[name] = float32(speed)
	}
}

// canonicalNames lists the symbolic animation names the controller selects between.
var canonicalNames = []string{"Stand", "Walk", "Fly", "Hover", "Sit", "Wave"}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
