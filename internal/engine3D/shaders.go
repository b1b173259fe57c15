package engine3D

import (
	"embed"
	"fmt"
	"path"
	"sort"
	"strings"

	"portalview/internal/utils"

	rl "github.com/gen2brain/raylib-go/raylib"
)

//go:embed shaders/*.vert shaders/*.frag shaders/*.glsl
var shaderFS embed.FS

const glslVersion = "#version 330\n"

// PreprocessShader prepends the GLSL version and combo defines and
// inlines #include "file" lines from the embedded shader directory.
// Each file is included at most once.
func PreprocessShader(source string, combos map[string]int, name string) string {
	var sb strings.Builder
	sb.WriteString(glslVersion)

	keys := make([]string, 0, len(combos))
	for k := range combos {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&sb, "#define %s %d\n", k, combos[k])
	}

	included := make(map[string]bool)
	for _, line := range strings.Split(source, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "#include \"") && strings.HasSuffix(trimmed, "\"") {
			includeFile := strings.TrimSpace(trimmed[len("#include \"") : len(trimmed)-1])
			if included[includeFile] {
				continue
			}
			content, err := shaderFS.ReadFile(path.Join("shaders", includeFile))
			if err != nil {
				utils.Warn("Shader: %s: could not resolve include %s", name, includeFile)
				continue
			}
			sb.WriteString(strings.Trim(string(content), "\ufeff"))
			sb.WriteString("\n")
			included[includeFile] = true
			continue
		}
		sb.WriteString(line)
		sb.WriteString("\n")
	}
	return sb.String()
}

// LoadShader compiles the embedded name.vert and name.frag with combos.
func LoadShader(name string, combos map[string]int) (rl.Shader, error) {
	vert, err := shaderFS.ReadFile(path.Join("shaders", name+".vert"))
	if err != nil {
		return rl.Shader{}, err
	}
	frag, err := shaderFS.ReadFile(path.Join("shaders", name+".frag"))
	if err != nil {
		return rl.Shader{}, err
	}

	utils.Debug("Shader: Preprocessing %s (Combos: %v)", name, combos)
	sh := rl.LoadShaderFromMemory(
		PreprocessShader(string(vert), combos, name),
		PreprocessShader(string(frag), combos, name),
	)
	if !rl.IsShaderValid(sh) {
		return rl.Shader{}, fmt.Errorf("shader %s failed to compile", name)
	}
	return sh, nil
}

// litShader draws props and traveller graphics with simple directional
// shading. With SLICE set it also discards fragments past the slice
// plane.
type litShader struct {
	rl.Shader
	sliceCentre int32
	sliceNormal int32
	sliceOffset int32
}

func loadLitShader(slice bool) (*litShader, error) {
	combos := map[string]int{"SLICE": 0}
	if slice {
		combos["SLICE"] = 1
	}
	sh, err := LoadShader("lit", combos)
	if err != nil {
		return nil, err
	}
	sh.UpdateLocation(rl.ShaderLocMatrixModel, rl.GetShaderLocation(sh, "matModel"))
	sh.UpdateLocation(rl.ShaderLocMatrixNormal, rl.GetShaderLocation(sh, "matNormal"))
	return &litShader{
		Shader:      sh,
		sliceCentre: rl.GetShaderLocation(sh, "sliceCentre"),
		sliceNormal: rl.GetShaderLocation(sh, "sliceNormal"),
		sliceOffset: rl.GetShaderLocation(sh, "sliceOffsetDst"),
	}, nil
}

// screenShader samples the bound portal view in screen space.
type screenShader struct {
	rl.Shader
	screenSize  int32
	displayMask int32
	inactive    int32
}

func loadScreenShader() (*screenShader, error) {
	sh, err := LoadShader("screen", nil)
	if err != nil {
		return nil, err
	}
	return &screenShader{
		Shader:      sh,
		screenSize:  rl.GetShaderLocation(sh, "screenSize"),
		displayMask: rl.GetShaderLocation(sh, "displayMask"),
		inactive:    rl.GetShaderLocation(sh, "inactiveColour"),
	}, nil
}
