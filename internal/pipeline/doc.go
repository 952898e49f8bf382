// Package pipeline runs the full corner detection pipeline on one image and
// packages every intermediate stage as a displayable artifact.
//
// Process is the single entry point. It validates Params, then runs
// grayscale conversion, Gaussian smoothing, Sobel gradients, the structure
// tensor, and both corner detectors (Harris and Shi-Tomasi), and finally
// renders the response maps and marker overlays. Encode turns the Result
// into the nine base64 images expected by clients.
//
// # Thread Safety
//
// Process keeps all state in local buffers and may be called concurrently
// from multiple goroutines. Within a call, convolution stages are split into
// row bands across Params.Workers goroutines; every output pixel is computed
// in a fixed order, so results are bit-identical for any worker count.
package pipeline
