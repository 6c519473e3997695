// Package testutil provides synthetic grayscale frame sequences for tests
// that drive the sensor without a camera.
package testutil

import "image"

// Bar returns a w x h black frame with a white vertical bar of the given
// width whose left edge is at x. Parts outside the frame are clipped.
func Bar(w, h, x, width int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for row := 0; row < h; row++ {
		line := img.Pix[row*img.Stride : row*img.Stride+w]
		for col := max(x, 0); col < min(x+width, w); col++ {
			line[col] = 255
		}
	}
	return img
}

// HorizontalSwipe returns frames of a bar moving from fromX to toX in the
// given number of steps. The first and last positions are each held for
// hold frames, so the sequence starts and ends without motion.
func HorizontalSwipe(w, h, fromX, toX, steps, hold int) []*image.Gray {
	const barWidth = 60

	var frames []*image.Gray
	for i := 0; i < hold; i++ {
		frames = append(frames, Bar(w, h, fromX, barWidth))
	}
	for i := 1; i <= steps; i++ {
		x := fromX + (toX-fromX)*i/steps
		frames = append(frames, Bar(w, h, x, barWidth))
	}
	for i := 0; i < hold; i++ {
		frames = append(frames, Bar(w, h, toX, barWidth))
	}
	return frames
}
