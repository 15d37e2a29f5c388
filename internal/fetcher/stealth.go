package fetcher

import (
	"fmt"
	"strings"
)

// StealthConfig configures anti-detection and fingerprint spoofing for the
// browser session.
type StealthConfig struct {
	// Platform reported by navigator.platform.
	Platform string

	// Languages reported by navigator.languages, most preferred first.
	Languages []string

	// WebGL vendor/renderer strings reported to fingerprinting scripts.
	WebGLVendor   string
	WebGLRenderer string

	// CanvasNoise perturbs canvas pixel data on export.
	CanvasNoise bool

	// AudioNoise perturbs AudioContext analyser output.
	AudioNoise bool
}

// DefaultStealthConfig returns a stealth configuration that mimics a Korean
// desktop Chrome install.
func DefaultStealthConfig() *StealthConfig {
	return &StealthConfig{
		Platform:      "MacIntel",
		Languages:     []string{"ko-KR", "ko", "en-US", "en"},
		WebGLVendor:   "Intel Inc.",
		WebGLRenderer: "Intel Iris OpenGL Engine",
		CanvasNoise:   true,
		AudioNoise:    true,
	}
}

// FingerprintJS returns JavaScript injected into every new document before
// any site script runs. It removes the webdriver marker, fakes the chrome
// runtime object, spoofs plugin/language lists and WebGL strings, and
// randomizes canvas/audio fingerprints.
func (sc *StealthConfig) FingerprintJS() string {
	langs := `'` + strings.Join(sc.Languages, `', '`) + `'`

	js := fmt.Sprintf(`
Object.defineProperty(navigator, 'webdriver', { get: () => undefined });
Object.defineProperty(navigator, 'platform', { get: () => '%s' });
Object.defineProperty(navigator, 'languages', { get: () => [%s] });
Object.defineProperty(navigator, 'plugins', { get: () => [1, 2, 3, 4, 5] });

window.chrome = {
	runtime: {},
	loadTimes: function() {},
	csi: function() {},
	app: {}
};

if (window.navigator.permissions && window.navigator.permissions.query) {
	const originalQuery = window.navigator.permissions.query;
	window.navigator.permissions.query = (parameters) => (
		parameters.name === 'notifications' ?
			Promise.resolve({ state: 'default' }) :
			originalQuery(parameters)
	);
}

const getParameter = WebGLRenderingContext.prototype.getParameter;
WebGLRenderingContext.prototype.getParameter = function(parameter) {
	if (parameter === 37445) { return '%s'; }
	if (parameter === 37446) { return '%s'; }
	return getParameter.call(this, parameter);
};
`, sc.Platform, langs, sc.WebGLVendor, sc.WebGLRenderer)

	if sc.CanvasNoise {
		js += `
const originalToDataURL = HTMLCanvasElement.prototype.toDataURL;
HTMLCanvasElement.prototype.toDataURL = function() {
	const context = this.getContext('2d');
	if (context) {
		const imageData = context.getImageData(0, 0, this.width, this.height);
		for (let i = 0; i < imageData.data.length; i += 4) {
			imageData.data[i] += Math.floor(Math.random() * 10) - 5;
		}
		context.putImageData(imageData, 0, 0);
	}
	return originalToDataURL.apply(this, arguments);
};
`
	}

	if sc.AudioNoise {
		js += `
if (window.AudioContext || window.webkitAudioContext) {
	const AudioCtx = window.AudioContext || window.webkitAudioContext;
	const originalCreateAnalyser = AudioCtx.prototype.createAnalyser;
	AudioCtx.prototype.createAnalyser = function() {
		const analyser = originalCreateAnalyser.apply(this, arguments);
		const originalGetFloatFrequencyData = analyser.getFloatFrequencyData;
		analyser.getFloatFrequencyData = function(array) {
			originalGetFloatFrequencyData.apply(this, arguments);
			for (let i = 0; i < array.length; i++) {
				array[i] += Math.random() * 0.0001;
			}
		};
		return analyser;
	};
}
`
	}

	return js
}

// browserHeaders are the extra headers sent with every browser navigation,
// mimicking a real top-level document request.
var browserHeaders = []string{
	"Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8",
	"Accept-Language", "ko-KR,ko;q=0.9,en-US;q=0.8,en;q=0.7",
	"Upgrade-Insecure-Requests", "1",
	"Sec-Fetch-Dest", "document",
	"Sec-Fetch-Mode", "navigate",
	"Sec-Fetch-Site", "none",
	"Cache-Control", "max-age=0",
}
