package shader

// BatchVertex reads the batched layout: position, packed color (BGRA
// bytes, normalized), texture coordinates.
const BatchVertex = `#version 410 core

layout (location = 0) in vec2 aPosition;
layout (location = 1) in vec4 aColor;
layout (location = 2) in vec2 aTexCoord;

uniform mat3 uProjection;

out vec4 vColor;
out vec2 vTexCoord;

void main() {
	vec3 p = uProjection * vec3(aPosition, 1.0);
	gl_Position = vec4(p.xy, 0.0, 1.0);
	vColor = aColor;
	vTexCoord = aTexCoord;
}
`

// BatchFragment tints the page texel by the vertex color.
const BatchFragment = `#version 410 core

in vec4 vColor;
in vec2 vTexCoord;

uniform sampler2D uTexture;

out vec4 FragColor;

void main() {
	FragColor = vColor * texture(uTexture, vTexCoord);
}
`
