// Package source decodes video into raw RGBA rasters by running ffmpeg as a
// child process, and resolves the video's pixel size before playback.
//
// ffmpeg writes frames to its stdout back to back with no framing. A frame of
// a w×h video is exactly w*h*4 bytes, so the stream is cut purely by length
// and a short read marks the end of the video.
package source
